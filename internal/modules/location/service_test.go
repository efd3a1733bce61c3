package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"wastagram/internal/types"
)

var surabaya = types.Point{Lat: -7.2575, Lng: 112.7521}

type fakeGeocoder struct {
	point types.Point
	err   error
	calls int
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) (types.Point, error) {
	g.calls++
	return g.point, g.err
}

type memoryStore struct {
	fixes map[types.ID]Fix
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{fixes: make(map[types.ID]Fix)}
}

func (m *memoryStore) SetLastKnown(_ context.Context, fix Fix) error {
	if m.err != nil {
		return m.err
	}
	m.fixes[fix.UserID] = fix
	return nil
}

func (m *memoryStore) LastKnown(_ context.Context, id types.ID) (Fix, bool, error) {
	if m.err != nil {
		return Fix{}, false, m.err
	}
	fix, ok := m.fixes[id]
	return fix, ok, nil
}

func TestResolve_Chain(t *testing.T) {
	ctx := context.Background()
	explicit := types.Point{Lat: -7.29, Lng: 112.74}
	geocoded := types.Point{Lat: -7.31, Lng: 112.72}
	lastKnown := types.Point{Lat: -7.33, Lng: 112.78}

	store := newMemoryStore()
	store.fixes["u1"] = Fix{UserID: "u1", Point: lastKnown}

	tests := []struct {
		name     string
		geocoder Geocoder
		query    Query
		want     Resolved
	}{
		{
			name:     "explicit wins",
			geocoder: &fakeGeocoder{point: geocoded},
			query:    Query{Point: &explicit, Address: "Jl. Ketintang", UserID: "u1"},
			want:     Resolved{Point: explicit, Source: SourceExplicit},
		},
		{
			name:     "address geocoded",
			geocoder: &fakeGeocoder{point: geocoded},
			query:    Query{Address: "Jl. Ketintang", UserID: "u1"},
			want:     Resolved{Point: geocoded, Source: SourceGeocoded},
		},
		{
			name:     "geocoder error falls through to last known",
			geocoder: &fakeGeocoder{err: errors.New("ZERO_RESULTS")},
			query:    Query{Address: "nowhere", UserID: "u1"},
			want:     Resolved{Point: lastKnown, Source: SourceLastKnown},
		},
		{
			name:     "no geocoder uses last known",
			geocoder: nil,
			query:    Query{Address: "Jl. Ketintang", UserID: "u1"},
			want:     Resolved{Point: lastKnown, Source: SourceLastKnown},
		},
		{
			name:     "unknown user uses fallback",
			geocoder: nil,
			query:    Query{UserID: "ghost"},
			want:     Resolved{Point: surabaya, Source: SourceFallback},
		},
		{
			name:     "empty query uses fallback",
			geocoder: &fakeGeocoder{point: geocoded},
			query:    Query{},
			want:     Resolved{Point: surabaya, Source: SourceFallback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(store, tt.geocoder, surabaya)
			got, err := svc.Resolve(ctx, tt.query)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_InvalidExplicitPoint(t *testing.T) {
	svc := NewService(nil, nil, surabaya)
	bad := types.Point{Lat: -91, Lng: 0}
	if _, err := svc.Resolve(context.Background(), Query{Point: &bad}); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolve_StoreErrorFallsBack(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis down")
	svc := NewService(store, nil, surabaya)

	got, err := svc.Resolve(context.Background(), Query{UserID: "u1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", got.Source)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewService(store, nil, surabaya)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	fix, err := svc.Update(ctx, "u1", types.Point{Lat: -7.3, Lng: 112.7})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !fix.RecordedAt.Equal(svc.now()) {
		t.Fatalf("RecordedAt = %s", fix.RecordedAt)
	}
	got, err := svc.Resolve(ctx, Query{UserID: "u1"})
	if err != nil || got.Source != SourceLastKnown {
		t.Fatalf("Resolve after Update = %+v, %v", got, err)
	}

	if _, err := svc.Update(ctx, "", types.Point{}); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("empty user: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Update(ctx, "u1", types.Point{Lat: 0, Lng: 200}); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("bad point: expected ErrInvalidInput, got %v", err)
	}
	for _, lat := range []float64{89, -86} {
		if _, err := svc.Update(ctx, "u1", types.Point{Lat: lat, Lng: 10}); !errors.Is(err, types.ErrInvalidInput) {
			t.Fatalf("polar latitude %v: expected ErrInvalidInput, got %v", lat, err)
		}
	}
	if _, err := svc.Update(ctx, "u1", types.Point{Lat: MaxGeoLatitude, Lng: 10}); err != nil {
		t.Fatalf("latitude at the index limit: %v", err)
	}
}

func TestStore_LastKnownRoundTrip(t *testing.T) {
	redisAddr := os.Getenv("WASTAGRAM_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("WASTAGRAM_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()
	store := NewStore(rdb)
	ctx := context.Background()

	uid := types.ID(fmt.Sprintf("user_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		rdb.ZRem(ctx, userGeoKey, string(uid))
		rdb.Del(ctx, seenAtKey(uid))
	})

	if _, ok, err := store.LastKnown(ctx, uid); err != nil || ok {
		t.Fatalf("LastKnown before set = %v, %v", ok, err)
	}

	fix := Fix{UserID: uid, Point: types.Point{Lat: -7.2575, Lng: 112.7521}, RecordedAt: time.Now()}
	if err := store.SetLastKnown(ctx, fix); err != nil {
		t.Fatalf("SetLastKnown: %v", err)
	}
	got, ok, err := store.LastKnown(ctx, uid)
	if err != nil || !ok {
		t.Fatalf("LastKnown = %v, %v", ok, err)
	}
	// GEO encoding keeps roughly 0.6 m of precision.
	if d := got.Point.Lat - fix.Point.Lat; d > 1e-4 || d < -1e-4 {
		t.Fatalf("lat drifted: %f vs %f", got.Point.Lat, fix.Point.Lat)
	}
	if d := got.Point.Lng - fix.Point.Lng; d > 1e-4 || d < -1e-4 {
		t.Fatalf("lng drifted: %f vs %f", got.Point.Lng, fix.Point.Lng)
	}
}
