package session

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lumenhq/console/pkg/observability"
)

// MemoryStore keeps sessions in process memory. Suitable for single
// instance deployments; use RedisStore when running more than one replica.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *observability.Logger
	metrics  *observability.Metrics
	cron     *cron.Cron

	// now is swappable in tests
	now func() time.Time
}

// NewMemoryStore creates an in-memory session store and starts a
// background sweep on the given interval.
func NewMemoryStore(sweepInterval time.Duration, logger *observability.Logger, metrics *observability.Metrics) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}

	if sweepInterval > 0 {
		s.cron = cron.New()
		_, err := s.cron.AddFunc("@every "+sweepInterval.String(), func() {
			defer observability.RecoverPanic(s.logger, "session sweep")
			removed := s.Sweep()
			if removed > 0 && s.logger != nil {
				s.logger.WithField("removed", removed).Debug("swept expired sessions")
			}
		})
		if err == nil {
			s.cron.Start()
		} else if s.logger != nil {
			s.logger.WithError(err).Error("failed to schedule session sweep")
		}
	}

	return s
}

// Create stores a session under its ID
func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	active := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(active))
	}
	return nil
}

// Get returns the session for id, or ErrNotFound when it is missing or
// expired. Expired sessions are removed on lookup.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	return sess, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(active))
	}
	return nil
}

// Sweep removes all expired sessions and returns how many were dropped
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(active))
		if removed > 0 {
			s.metrics.SessionSweepTotal.Add(float64(removed))
		}
	}
	return removed
}

// Len returns the number of stored sessions, including not-yet-swept
// expired ones.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweep
func (s *MemoryStore) Close() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	return nil
}
