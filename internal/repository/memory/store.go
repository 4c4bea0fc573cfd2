// Package memory 提供 repository.Store 的内存实现，供服务层测试与本地调试使用
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type tables struct {
	users         map[string]model.User
	admins        map[string]model.SystemAdmin // key: user id
	communities   map[string]model.Community
	members       map[string]model.CommunityMember // key: community|user
	requests      map[string]model.JoinRequest
	announcements map[string]model.Announcement
	posts         map[string]model.Post
	comments      map[string]model.PostComment
	likes         map[string]model.PostLike // key: post|user
}

func newTables() *tables {
	return &tables{
		users:         map[string]model.User{},
		admins:        map[string]model.SystemAdmin{},
		communities:   map[string]model.Community{},
		members:       map[string]model.CommunityMember{},
		requests:      map[string]model.JoinRequest{},
		announcements: map[string]model.Announcement{},
		posts:         map[string]model.Post{},
		comments:      map[string]model.PostComment{},
		likes:         map[string]model.PostLike{},
	}
}

func (t *tables) clone() *tables {
	return &tables{
		users:         maps.Clone(t.users),
		admins:        maps.Clone(t.admins),
		communities:   maps.Clone(t.communities),
		members:       maps.Clone(t.members),
		requests:      maps.Clone(t.requests),
		announcements: maps.Clone(t.announcements),
		posts:         maps.Clone(t.posts),
		comments:      maps.Clone(t.comments),
		likes:         maps.Clone(t.likes),
	}
}

type db struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    *tables
	now  func() time.Time
}

type state struct {
	*db
	inTx bool
}

// write 写锁；事务外的单条写入同样要拿 txMu，避免被并发事务的回滚覆盖
func (s *state) write() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

// Store 事务之间串行执行；事务失败时整体恢复到事务开始前的快照
type Store struct {
	*state
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{state: &state{db: &db{t: newTables(), now: time.Now}}}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.t.clone()
	s.mu.RUnlock()

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			s.t = snap
			s.mu.Unlock()
		}
	}()

	if err = fn(txStore{&state{db: s.db, inTx: true}}); err != nil {
		return err
	}
	committed = true
	return nil
}

// txStore 事务内视图，嵌套事务直接复用外层
type txStore struct {
	*state
}

func (t txStore) Transaction(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func pairKey(a, b string) string { return a + "|" + b }
