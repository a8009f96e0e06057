package server

import (
	"context"
	"sync"

	"provider-funnel/internal/funnel"
	"provider-funnel/internal/funnel/controller"

	lru "github.com/hashicorp/golang-lru/v2"
)

// session holds one live funnel. mu serialises its transitions.
type session struct {
	mu     sync.Mutex
	userID string
	ctrl   *controller.Controller
}

func (s *session) release() {
	s.mu.Unlock()
}

// sessions keeps the most recently used funnels loaded. An evicted funnel is
// reloaded from its slot on the next request.
type sessions struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *session]
	service *funnel.Service
}

func newSessions(size int, service *funnel.Service) (*sessions, error) {
	cache, err := lru.New[string, *session](size)
	if err != nil {
		return nil, err
	}
	return &sessions{cache: cache, service: service}, nil
}

// acquire returns the locked session for sessionID and category, loading the
// funnel on first use or when the signed-in user changed. Callers must
// release it.
func (s *sessions) acquire(ctx context.Context, sessionID, userID, category string) (*session, error) {
	key := sessionID + "/" + category

	s.mu.Lock()
	sess, ok := s.cache.Get(key)
	if !ok {
		sess = &session{}
		s.cache.Add(key, sess)
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if sess.ctrl != nil && sess.userID == userID {
		return sess, nil
	}
	if sess.ctrl != nil {
		sess.ctrl.Close()
		sess.ctrl = nil
	}
	c, err := s.service.Open(ctx, sessionID, userID, category)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.ctrl, sess.userID = c, userID
	return sess, nil
}

func (s *sessions) len() int {
	return s.cache.Len()
}
