package http

import (
	"sync"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

const defaultHistory = 256

// sessionStore remembers recent sessions. A nil state means still running.
type sessionStore struct {
	mu    sync.Mutex
	limit int
	order []string
	byID  map[string]*domain.SessionState
}

func newSessionStore(limit int) *sessionStore {
	if limit <= 0 {
		limit = defaultHistory
	}
	return &sessionStore{limit: limit, byID: make(map[string]*domain.SessionState)}
}

func (st *sessionStore) start(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.byID[id] = nil
	st.order = append(st.order, id)
	for len(st.order) > st.limit {
		delete(st.byID, st.order[0])
		st.order = st.order[1:]
	}
}

func (st *sessionStore) finish(s *domain.SessionState) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.byID[s.ID]; ok {
		st.byID[s.ID] = s
	}
}

func (st *sessionStore) drop(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.byID, id)
	for i, o := range st.order {
		if o == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
}

func (st *sessionStore) get(id string) (*domain.SessionState, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byID[id]
	return s, ok
}
