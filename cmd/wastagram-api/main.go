// README: Entry point; loads config, wires services, starts HTTP server and the stale-request sweeper.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wastagram/internal/ai"
	"wastagram/internal/config"
	httptransport "wastagram/internal/http"
	"wastagram/internal/infra"
	"wastagram/internal/maps"
	"wastagram/internal/mlclient"
	"wastagram/internal/modules/batching"
	"wastagram/internal/modules/location"
	"wastagram/internal/modules/recommendation"
	"wastagram/internal/notify"
	"wastagram/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional backends stay as nil interfaces when unconfigured.
	var (
		fixStore location.FixStore
		events   batching.EventPublisher
		notifier batching.Notifier
		geocoder location.Geocoder
		catalog  recommendation.Catalog = recommendation.NewStaticCatalog(recommendation.SeedPartners())
	)

	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis init: %v", err)
		}
		defer redisClient.Close()
		fixStore = location.NewStore(redisClient)
		events = batching.NewStore(redisClient)
	} else {
		log.Println("WASTAGRAM_REDIS_ADDR not set; last known locations and accepted batch events are disabled")
	}

	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("db init: %v", err)
		}
		defer dbPool.Close()
		catalog = recommendation.NewStore(dbPool)
	} else {
		log.Println("WASTAGRAM_DB_DSN not set; using the built-in partner catalog")
	}

	if cfg.Firebase.ProjectID != "" {
		client, err := infra.NewMessagingClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
		notifier = notify.NewFCMNotifier(client)
	} else {
		log.Println("WASTAGRAM_FIREBASE_PROJECT_ID not set; proposals are not pushed to couriers")
	}

	if cfg.Maps.APIKey != "" {
		gc, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = gc
	}

	var predictor recommendation.Predictor
	switch cfg.Recommendation.Predictor {
	case "http":
		predictor = mlclient.NewHTTPClient(cfg.Recommendation.PredictorURL, &http.Client{Timeout: cfg.Recommendation.PredictorTimeout})
	case "gemini":
		scorer, err := ai.NewGeminiScorer(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer scorer.Close()
		predictor = scorer
	}
	log.Printf("recommendation: predictor=%s", cfg.Recommendation.Predictor)

	locationSvc := location.NewService(fixStore, geocoder, types.Point{
		Lat: cfg.Recommendation.FallbackLat,
		Lng: cfg.Recommendation.FallbackLng,
	})
	engine := recommendation.NewEngine(predictor, cfg.Recommendation.PredictorTimeout)
	recommendationSvc := recommendation.NewService(locationSvc, catalog, engine)

	batchingSvc, err := batching.NewService(cfg.Batching, notifier, events)
	if err != nil {
		log.Fatal(err)
	}
	go func() {
		if err := batchingSvc.RunSweeper(ctx); err != nil {
			log.Printf("batching: sweeper stopped: %v", err)
		}
	}()

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Batching:       batchingSvc,
		Recommendation: recommendationSvc,
		Location:       locationSvc,
	})
	if err := httptransport.NewServer(cfg.HTTP.Addr, router).Run(ctx); err != nil {
		log.Fatal(err)
	}
}
