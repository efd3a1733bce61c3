// README: Batching service tests with in-memory notifier and event fakes; Redis store test is opt-in.
package batching

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"wastagram/internal/config"
	"wastagram/internal/types"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeNotifier struct {
	mu       sync.Mutex
	proposed []string
	err      error
}

func (f *fakeNotifier) NotifyProposal(_ context.Context, session string, sug BatchSuggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proposed = append(f.proposed, session+"/"+sug.ID)
	return f.err
}

type fakeEvents struct {
	mu       sync.Mutex
	accepted []BatchSuggestion
	err      error
}

func (f *fakeEvents) PublishAccepted(_ context.Context, _ string, sug BatchSuggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted = append(f.accepted, sug)
	return f.err
}

func testBatchingConfig() config.BatchingConfig {
	return config.BatchingConfig{
		MaxDistanceMeters:    5000,
		MaxAngleDeltaDegrees: 45,
		DirectionPolicy:      "permissive",
		StaleAfter:           6 * time.Hour,
		SweepSpec:            "@every 10m",
	}
}

func newTestService(t *testing.T, n Notifier, e EventPublisher) *Service {
	t.Helper()
	svc, err := NewService(testBatchingConfig(), n, e)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

func TestNewService_InvalidPolicy(t *testing.T) {
	cfg := testBatchingConfig()
	cfg.DirectionPolicy = "sideways"
	if _, err := NewService(cfg, nil, nil); err == nil {
		t.Fatal("expected error for unknown direction policy")
	}
}

func TestService_SubmitNotifiesAndAcceptPublishes(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	events := &fakeEvents{}
	svc := newTestService(t, notifier, events)

	if sug, err := svc.Submit(ctx, "courier-1", req("a", -6.2088, 106.8456, 1)); err != nil || sug != nil {
		t.Fatalf("first submit: %+v, %v", sug, err)
	}
	sug, err := svc.Submit(ctx, "courier-1", req("b", -6.2098, 106.8466, 2))
	if err != nil || sug == nil {
		t.Fatalf("second submit: %+v, %v", sug, err)
	}
	if len(notifier.proposed) != 1 || notifier.proposed[0] != "courier-1/"+sug.ID {
		t.Fatalf("unexpected notifications %v", notifier.proposed)
	}

	if _, err := svc.Accept(ctx, "courier-1", sug.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(events.accepted) != 1 || events.accepted[0].ID != sug.ID {
		t.Fatalf("unexpected accepted events %+v", events.accepted)
	}

	snap, err := svc.Snapshot("courier-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Pending) != 0 || len(snap.Accepted) != 2 || snap.Suggestion != nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestService_SinkFailuresAreNotReturned(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakeNotifier{err: errors.New("fcm down")}, &fakeEvents{err: errors.New("redis down")})

	if _, err := svc.Submit(ctx, "c", req("a", -6.2088, 106.8456, 1)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	sug, err := svc.Submit(ctx, "c", req("b", -6.2098, 106.8466, 2))
	if err != nil || sug == nil {
		t.Fatalf("Submit: %+v, %v", sug, err)
	}
	if _, err := svc.Accept(ctx, "c", sug.ID); err != nil {
		t.Fatalf("Accept should succeed when the event bus fails: %v", err)
	}
}

func TestService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, nil)

	if _, err := svc.Submit(ctx, "c1", req("a", -6.2088, 106.8456, 1)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	sug, err := svc.Submit(ctx, "c2", req("b", -6.2098, 106.8466, 2))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sug != nil {
		t.Fatalf("requests in another session must not batch, got %+v", sug)
	}
}

func TestService_UnknownSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, nil)

	if _, err := svc.Snapshot("ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Snapshot: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Accept(ctx, "ghost", "x"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Accept: expected ErrSessionNotFound, got %v", err)
	}
	if _, _, err := svc.Pickup(ctx, "ghost", "x"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Pickup: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Submit(ctx, "", req("a", 0, 0, 1)); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("Submit with empty session: expected ErrInvalidInput, got %v", err)
	}
}

func TestService_SubmitDefaultsCreatedAt(t *testing.T) {
	svc := newTestService(t, nil, nil)
	r := req("a", -6.2088, 106.8456, 1)
	r.CreatedAt = time.Time{}
	if _, err := svc.Submit(context.Background(), "c", r); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap, _ := svc.Snapshot("c")
	if !snap.Pending[0].CreatedAt.Equal(svc.now()) {
		t.Fatalf("CreatedAt = %s, want %s", snap.Pending[0].CreatedAt, svc.now())
	}
}

func TestService_SweepStale(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, nil)

	old := req("old", -6.2088, 106.8456, 1)
	old.CreatedAt = svc.now().Add(-7 * time.Hour)
	fresh := req("fresh", -6.3000, 106.9000, 1)
	fresh.CreatedAt = svc.now().Add(-time.Hour)
	for _, r := range []PickupRequest{old, fresh} {
		if _, err := svc.Submit(ctx, "c", r); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	if n := svc.SweepStale(svc.now()); n != 1 {
		t.Fatalf("SweepStale dropped %d, want 1", n)
	}
	snap, _ := svc.Snapshot("c")
	if len(snap.Pending) != 1 || snap.Pending[0].ID != "fresh" {
		t.Fatalf("pending after sweep = %+v", snap.Pending)
	}
}

func TestService_RunSweeperRejectsBadSpec(t *testing.T) {
	cfg := testBatchingConfig()
	cfg.SweepSpec = "every now and then"
	svc, err := NewService(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.RunSweeper(context.Background()); err == nil {
		t.Fatal("expected error for an invalid cron spec")
	}
}

func TestService_RunSweeperStopsOnCancel(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.RunSweeper(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunSweeper: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunSweeper did not stop after cancel")
	}
}

// ---------------------------------------------------------------------------
// Redis store (integration)
// ---------------------------------------------------------------------------

func TestStore_PublishAcceptedOnce(t *testing.T) {
	addr := os.Getenv("WASTAGRAM_REDIS_ADDR")
	if addr == "" {
		t.Skip("WASTAGRAM_REDIS_ADDR not set; skipping integration test")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	store := NewStore(client)

	sub := client.Subscribe(ctx, AcceptedChannel)
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	session := "test-" + time.Now().Format("150405.000000")
	sug, _ := BuildSuggestion(req("a", -6.2088, 106.8456, 1), []PickupRequest{req("b", -6.2098, 106.8466, 2)}, time.Now())
	t.Cleanup(func() {
		client.Del(ctx, resolvedKey(sug.ID), sessionBatchesKey(session))
	})

	for i := 0; i < 2; i++ {
		if err := store.PublishAccepted(ctx, session, sug); err != nil {
			t.Fatalf("PublishAccepted #%d: %v", i+1, err)
		}
	}

	resolved, err := store.IsResolved(ctx, sug.ID)
	if err != nil || !resolved {
		t.Fatalf("IsResolved = %v, %v", resolved, err)
	}
	batches, err := store.AcceptedBatches(ctx, session)
	if err != nil || len(batches) != 1 || batches[0] != sug.ID {
		t.Fatalf("AcceptedBatches = %v, %v", batches, err)
	}

	msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(msgCtx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Channel != AcceptedChannel {
		t.Fatalf("channel = %s", msg.Channel)
	}
}
