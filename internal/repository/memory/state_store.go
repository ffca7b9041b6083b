package memory

import (
	"context"
	"sync"

	"github.com/drtz/PiThermServer/internal/domain/notification"
)

var _ notification.StateStore = (*StateStore)(nil)

type StateStore struct {
	mu sync.Mutex
	st notification.ThrottleState
}

func NewStateStore() *StateStore { return &StateStore{} }

func (s *StateStore) Load(context.Context) (notification.ThrottleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st, nil
}

func (s *StateStore) Save(_ context.Context, st notification.ThrottleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = st
	return nil
}
