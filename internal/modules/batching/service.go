// README: Batching service keeps one session per courier and fans suggestions out to push and event sinks.
package batching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"wastagram/internal/config"
	"wastagram/internal/types"
)

var ErrSessionNotFound = errors.New("session not found")

// Notifier pushes a fresh proposal to the courier who owns the session.
type Notifier interface {
	NotifyProposal(ctx context.Context, session string, sug BatchSuggestion) error
}

// EventPublisher announces accepted batches to downstream consumers.
type EventPublisher interface {
	PublishAccepted(ctx context.Context, session string, sug BatchSuggestion) error
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	Session    string           `json:"session"`
	State      State            `json:"state"`
	Pending    []PickupRequest  `json:"pending"`
	Accepted   []PickupRequest  `json:"accepted"`
	Suggestion *BatchSuggestion `json:"suggestion"`
}

type Service struct {
	params   MatchParams
	cfg      config.BatchingConfig
	notifier Notifier
	events   EventPublisher
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService builds the registry. notifier and events may be nil.
func NewService(cfg config.BatchingConfig, notifier Notifier, events EventPublisher) (*Service, error) {
	policy, err := ParseDirectionPolicy(cfg.DirectionPolicy)
	if err != nil {
		return nil, err
	}
	return &Service{
		params: MatchParams{
			MaxDistanceMeters:    cfg.MaxDistanceMeters,
			MaxAngleDeltaDegrees: cfg.MaxAngleDeltaDegrees,
			Policy:               policy,
		},
		cfg:      cfg,
		notifier: notifier,
		events:   events,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// Submit places a new request in the courier's session, creating the session
// on first use. CreatedAt defaults to now.
func (s *Service) Submit(ctx context.Context, session string, req PickupRequest) (*BatchSuggestion, error) {
	if err := validSessionID(session); err != nil {
		return nil, err
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now()
	}
	sess := s.getOrCreate(session)
	sug, err := sess.Submit(req)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, session, sug)
	return sug, nil
}

// Pickup removes a collected request from pending and proposes a batch anchored on it.
func (s *Service) Pickup(ctx context.Context, session string, id types.ID) (PickupRequest, *BatchSuggestion, error) {
	sess, err := s.lookup(session)
	if err != nil {
		return PickupRequest{}, nil, err
	}
	req, sug, err := sess.Pickup(id)
	if err != nil {
		return PickupRequest{}, nil, err
	}
	s.notify(ctx, session, sug)
	return req, sug, nil
}

func (s *Service) Accept(ctx context.Context, session, suggestionID string) (BatchSuggestion, error) {
	sess, err := s.lookup(session)
	if err != nil {
		return BatchSuggestion{}, err
	}
	sug, err := sess.Accept(suggestionID)
	if err != nil {
		return BatchSuggestion{}, err
	}
	if s.events != nil {
		if err := s.events.PublishAccepted(ctx, session, sug); err != nil {
			log.Printf("batching: publish accepted batch %s: %v", sug.ID, err)
		}
	}
	return sug, nil
}

func (s *Service) Decline(ctx context.Context, session, suggestionID string) (BatchSuggestion, error) {
	sess, err := s.lookup(session)
	if err != nil {
		return BatchSuggestion{}, err
	}
	return sess.Decline(suggestionID)
}

func (s *Service) Snapshot(session string) (Snapshot, error) {
	sess, err := s.lookup(session)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Session:  session,
		State:    sess.State(),
		Pending:  sess.Pending(),
		Accepted: sess.Accepted(),
	}
	if cur, ok := sess.Current(); ok {
		snap.Suggestion = &cur
	}
	return snap, nil
}

// SweepStale expires pending requests older than the configured TTL across
// all sessions and returns how many were dropped.
func (s *Service) SweepStale(now time.Time) int {
	if s.cfg.StaleAfter <= 0 {
		return 0
	}
	cutoff := now.Add(-s.cfg.StaleAfter)

	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)

	total := 0
	for _, id := range ids {
		sess, err := s.lookup(id)
		if err != nil {
			continue
		}
		expired := sess.ExpireBefore(cutoff)
		if len(expired) > 0 {
			log.Printf("batching: session %s expired %d stale requests", id, len(expired))
		}
		total += len(expired)
	}
	return total
}

// RunSweeper runs SweepStale on the configured cron spec until ctx is done.
func (s *Service) RunSweeper(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.SweepSpec, func() { s.SweepStale(s.now()) }); err != nil {
		return fmt.Errorf("schedule stale sweep %q: %w", s.cfg.SweepSpec, err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *Service) notify(ctx context.Context, session string, sug *BatchSuggestion) {
	if sug == nil || s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyProposal(ctx, session, *sug); err != nil {
		log.Printf("batching: notify session %s of batch %s: %v", session, sug.ID, err)
	}
}

func (s *Service) getOrCreate(session string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[session]
	if !ok {
		sess = NewSession(session, s.params)
		sess.now = s.now
		s.sessions[session] = sess
	}
	return sess
}

func (s *Service) lookup(session string) (*Session, error) {
	if err := validSessionID(session); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[session]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, session)
	}
	return sess, nil
}

func validSessionID(session string) error {
	if session == "" {
		return fmt.Errorf("%w: session id is required", types.ErrInvalidInput)
	}
	return nil
}
