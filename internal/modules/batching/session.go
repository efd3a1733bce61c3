// README: Per-courier session owning the pending/accepted pools and the single suggestion slot.
package batching

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"wastagram/internal/types"
)

type State string

const (
	StateNone     State = "none"
	StateProposed State = "proposed"
	StateAccepted State = "accepted"
	StateDeclined State = "declined"
)

// AllowedTransitions represents the suggestion lifecycle as code.
// Proposed -> Proposed is the overwrite of a pending suggestion by a newer one.
var AllowedTransitions = map[State][]State{
	StateNone:     {StateProposed},
	StateProposed: {StateProposed, StateAccepted, StateDeclined, StateNone},
	StateAccepted: {StateNone},
	StateDeclined: {StateNone},
}

func CanTransition(from, to State) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

var (
	ErrDuplicateRequest = errors.New("request already in session")
	ErrRequestNotFound  = errors.New("request not pending")
	ErrNoSuggestion     = errors.New("no suggestion proposed")
	ErrStaleSuggestion  = errors.New("suggestion is no longer current")
	ErrInvalidState     = errors.New("invalid suggestion state transition")
)

// Session is one courier's view of the pending pool. All methods are safe for
// concurrent use; mutation is serialised so every transition applies once.
type Session struct {
	id     string
	params MatchParams
	now    func() time.Time

	mu          sync.Mutex
	state       State
	current     *BatchSuggestion
	pending     []PickupRequest
	pendingIdx  map[types.ID]int
	accepted    []PickupRequest
	acceptedIdx map[types.ID]struct{}
}

func NewSession(id string, params MatchParams) *Session {
	return &Session{
		id:          id,
		params:      params,
		now:         time.Now,
		state:       StateNone,
		pendingIdx:  make(map[types.ID]int),
		acceptedIdx: make(map[types.ID]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// AddPending places req in the pending pool without running the matcher.
func (s *Session) AddPending(req PickupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPendingLocked(req)
}

// Submit checks a newly placed request against the pending pool, proposes a
// batch on a match, then adds the request to the pool for later anchors.
func (s *Session) Submit(req PickupRequest) (*BatchSuggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUniqueLocked(req.ID); err != nil {
		return nil, err
	}
	sug := s.proposeLocked(req)
	if err := s.addPendingLocked(req); err != nil {
		return nil, err
	}
	return sug, nil
}

// Propose runs the matcher for anchor against the pending pool. A match
// replaces any suggestion still awaiting an answer.
func (s *Session) Propose(anchor PickupRequest) (*BatchSuggestion, error) {
	if err := anchor.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposeLocked(anchor), nil
}

// Pickup removes a pending request the courier has collected and uses it as
// the anchor for a new proposal.
func (s *Session) Pickup(id types.ID) (PickupRequest, *BatchSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.removePendingLocked(id)
	if !ok {
		return PickupRequest{}, nil, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	return req, s.proposeLocked(req), nil
}

// Accept moves every order of the current suggestion, and its anchor when
// still pending, from pending to accepted.
func (s *Session) Accept(suggestionID string) (BatchSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sug, err := s.currentLocked(suggestionID)
	if err != nil {
		return BatchSuggestion{}, err
	}
	if err := s.transitionLocked(StateAccepted); err != nil {
		return BatchSuggestion{}, err
	}
	for _, o := range sug.Orders {
		if _, ok := s.removePendingLocked(o.ID); !ok {
			// Unreachable while removals invalidate the suggestion; keep the pools disjoint regardless.
			log.Printf("batching: session %s accepted order %s that was not pending", s.id, o.ID)
		}
		s.acceptLocked(o)
	}
	// A submitted anchor is still pending; it starts the accepted route. A
	// picked-up anchor has already left the pool.
	if anchor, ok := s.removePendingLocked(sug.AnchorID); ok {
		s.acceptLocked(anchor)
	}
	s.current = nil
	if err := s.transitionLocked(StateNone); err != nil {
		return BatchSuggestion{}, err
	}
	log.Printf("batching: session %s accepted batch %s: %d orders, %.1f kg", s.id, sug.ID, sug.OrderCount(), sug.TotalWeightKg)
	return sug, nil
}

// Decline discards the current suggestion; its orders stay pending.
func (s *Session) Decline(suggestionID string) (BatchSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sug, err := s.currentLocked(suggestionID)
	if err != nil {
		return BatchSuggestion{}, err
	}
	if err := s.transitionLocked(StateDeclined); err != nil {
		return BatchSuggestion{}, err
	}
	s.current = nil
	if err := s.transitionLocked(StateNone); err != nil {
		return BatchSuggestion{}, err
	}
	log.Printf("batching: session %s declined batch %s", s.id, sug.ID)
	return sug, nil
}

// ExpireBefore drops pending requests created before cutoff and returns them.
func (s *Session) ExpireBefore(cutoff time.Time) []PickupRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []PickupRequest
	for _, r := range s.pending {
		if r.CreatedAt.Before(cutoff) {
			expired = append(expired, r)
		}
	}
	for _, r := range expired {
		s.removePendingLocked(r.ID)
	}
	return expired
}

func (s *Session) Pending() []PickupRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PickupRequest, len(s.pending))
	copy(out, s.pending)
	return out
}

func (s *Session) Accepted() []PickupRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PickupRequest, len(s.accepted))
	copy(out, s.accepted)
	return out
}

func (s *Session) Current() (BatchSuggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return BatchSuggestion{}, false
	}
	return *s.current, true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ---------------------------------------------------------------------------
// Lock-held helpers
// ---------------------------------------------------------------------------

func (s *Session) proposeLocked(anchor PickupRequest) *BatchSuggestion {
	compatible := FindCompatible(anchor, s.pending, s.acceptedIdx, s.params)
	sug, ok := BuildSuggestion(anchor, compatible, s.now())
	if !ok {
		return nil
	}
	if err := s.transitionLocked(StateProposed); err != nil {
		log.Printf("batching: session %s: %v", s.id, err)
		return nil
	}
	if s.current != nil {
		log.Printf("batching: session %s replaced unanswered batch %s with %s", s.id, s.current.ID, sug.ID)
	}
	s.current = &sug
	out := sug
	return &out
}

func (s *Session) currentLocked(suggestionID string) (BatchSuggestion, error) {
	if s.current == nil {
		return BatchSuggestion{}, ErrNoSuggestion
	}
	if s.current.ID != suggestionID {
		return BatchSuggestion{}, fmt.Errorf("%w: %s", ErrStaleSuggestion, suggestionID)
	}
	return *s.current, nil
}

func (s *Session) transitionLocked(to State) error {
	if !CanTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, s.state, to)
	}
	s.state = to
	return nil
}

func (s *Session) checkUniqueLocked(id types.ID) error {
	if _, ok := s.pendingIdx[id]; ok {
		return fmt.Errorf("%w: %s is pending", ErrDuplicateRequest, id)
	}
	if _, ok := s.acceptedIdx[id]; ok {
		return fmt.Errorf("%w: %s is accepted", ErrDuplicateRequest, id)
	}
	return nil
}

func (s *Session) acceptLocked(req PickupRequest) {
	s.accepted = append(s.accepted, req)
	s.acceptedIdx[req.ID] = struct{}{}
}

func (s *Session) addPendingLocked(req PickupRequest) error {
	if err := s.checkUniqueLocked(req.ID); err != nil {
		return err
	}
	s.pendingIdx[req.ID] = len(s.pending)
	s.pending = append(s.pending, req)
	return nil
}

// removePendingLocked deletes id from the pool, preserving order. Removing an
// order of the current suggestion invalidates it.
func (s *Session) removePendingLocked(id types.ID) (PickupRequest, bool) {
	idx, ok := s.pendingIdx[id]
	if !ok {
		return PickupRequest{}, false
	}
	req := s.pending[idx]
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	delete(s.pendingIdx, id)
	for i := idx; i < len(s.pending); i++ {
		s.pendingIdx[s.pending[i].ID] = i
	}

	if s.current != nil && s.state == StateProposed && s.current.contains(id) {
		log.Printf("batching: session %s dropped batch %s: order %s left the pool", s.id, s.current.ID, id)
		s.current = nil
		_ = s.transitionLocked(StateNone)
	}
	return req, true
}
