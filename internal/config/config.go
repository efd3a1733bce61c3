// README: Config loader with env defaults for HTTP, catalog DB, Redis, Firebase, batching and recommendation settings.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// BatchingConfig.DirectionPolicy is "permissive" (every nearby request is on
// the way) or "strict" (bearing must stay within MaxAngleDeltaDegrees).
type BatchingConfig struct {
	MaxDistanceMeters    float64
	MaxAngleDeltaDegrees float64
	DirectionPolicy      string
	StaleAfter           time.Duration
	SweepSpec            string
}

// RecommendationConfig.Predictor selects the predictive scorer: "none", "http" or "gemini".
type RecommendationConfig struct {
	FallbackLat      float64
	FallbackLng      float64
	Predictor        string
	PredictorURL     string
	PredictorTimeout time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
		DB   int
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
	Maps struct {
		APIKey string
	}
	Batching       BatchingConfig
	Recommendation RecommendationConfig
	AI             struct {
		GeminiKey   string
		GeminiModel string
	}
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("WASTAGRAM_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("WASTAGRAM_DB_DSN")
	cfg.Redis.Addr = os.Getenv("WASTAGRAM_REDIS_ADDR")
	cfg.Redis.DB = envOrDefaultInt("WASTAGRAM_REDIS_DB", 0)
	cfg.Firebase.ProjectID = os.Getenv("WASTAGRAM_FIREBASE_PROJECT_ID")
	cfg.Firebase.CredentialsFile = os.Getenv("WASTAGRAM_FIREBASE_CREDENTIALS")
	cfg.Maps.APIKey = os.Getenv("WASTAGRAM_MAPS_API_KEY")

	cfg.Batching.MaxDistanceMeters = envOrDefaultFloat("WASTAGRAM_BATCH_MAX_DISTANCE_M", 5000)
	cfg.Batching.MaxAngleDeltaDegrees = envOrDefaultFloat("WASTAGRAM_BATCH_MAX_ANGLE_DEG", 45)
	cfg.Batching.DirectionPolicy = envOrDefault("WASTAGRAM_BATCH_DIRECTION_POLICY", "permissive")
	cfg.Batching.StaleAfter = envOrDefaultDuration("WASTAGRAM_BATCH_STALE_AFTER", 6*time.Hour)
	cfg.Batching.SweepSpec = envOrDefault("WASTAGRAM_BATCH_SWEEP", "@every 10m")

	cfg.Recommendation.FallbackLat = envOrDefaultFloat("WASTAGRAM_FALLBACK_LAT", -7.2575)
	cfg.Recommendation.FallbackLng = envOrDefaultFloat("WASTAGRAM_FALLBACK_LNG", 112.7521)
	cfg.Recommendation.Predictor = envOrDefault("WASTAGRAM_PREDICTOR", "none")
	cfg.Recommendation.PredictorURL = os.Getenv("WASTAGRAM_PREDICTOR_URL")
	cfg.Recommendation.PredictorTimeout = envOrDefaultDuration("WASTAGRAM_PREDICTOR_TIMEOUT", 2*time.Second)

	cfg.AI.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.AI.GeminiModel = envOrDefault("WASTAGRAM_GEMINI_MODEL", "gemini-2.0-flash")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Recommendation.Predictor {
	case "none":
	case "http":
		if c.Recommendation.PredictorURL == "" {
			return fmt.Errorf("WASTAGRAM_PREDICTOR_URL is required when WASTAGRAM_PREDICTOR=http")
		}
	case "gemini":
		if c.AI.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when WASTAGRAM_PREDICTOR=gemini")
		}
	default:
		return fmt.Errorf("unknown WASTAGRAM_PREDICTOR %q", c.Recommendation.Predictor)
	}
	if c.Batching.MaxDistanceMeters < 0 || c.Batching.MaxAngleDeltaDegrees < 0 {
		return fmt.Errorf("batching thresholds must be non-negative")
	}
	if c.Recommendation.PredictorTimeout <= 0 {
		return fmt.Errorf("WASTAGRAM_PREDICTOR_TIMEOUT must be positive")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
