package memory

import (
	"context"
	"fmt"
	"sync"

	"mycoseed/internal/repository"
)

// TokenStore 登录 token 槽位的内存实现，不做过期处理
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: map[string]string{}}
}

func (s *TokenStore) SaveToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *TokenStore) GetToken(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[userID]
	if !ok {
		return "", fmt.Errorf("login token: %w", repository.ErrNotFound)
	}
	return t, nil
}

func (s *TokenStore) ExtendToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[userID]; !ok {
		return fmt.Errorf("login token: %w", repository.ErrNotFound)
	}
	return nil
}

func (s *TokenStore) DeleteToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
