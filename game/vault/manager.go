package vault

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/itemvault/server/cache"
	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/loot"
	"github.com/kasuganosora/itemvault/server/resource"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventChannel is the pub/sub channel for a given account's inventory change
// events. Payload is the name of the changed container.
func EventChannel(accountID int64) string {
	return fmt.Sprintf("inventory:%d", accountID)
}

// Session is one account's live inventory. The engine underneath is
// single-writer: all reads and writes go through Do, which serializes access.
type Session struct {
	accountID int64
	inv       *container.Inventory

	mu sync.Mutex
	// dirty is atomic because change hooks fire inline while Do holds mu.
	dirty atomic.Bool
}

// AccountID returns the owning account.
func (s *Session) AccountID() int64 { return s.accountID }

// Do runs fn with exclusive access to the session's inventory.
func (s *Session) Do(fn func(inv *container.Inventory)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.inv)
}

// Manager owns the live sessions and their persistence. Sessions are built
// from the configured default container templates on first access, then
// overlaid with the stored snapshot when one exists.
type Manager struct {
	db     *gorm.DB
	loader *resource.Loader
	ops    *container.Service
	drops  *loot.Service
	pubsub cache.PubSub
	logger *zap.Logger

	defaults []string

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewManager creates a session manager. defaults names the container templates
// every new inventory starts with, in first-fit order.
func NewManager(db *gorm.DB, loader *resource.Loader, ops *container.Service, drops *loot.Service, pubsub cache.PubSub, defaults []string, logger *zap.Logger) *Manager {
	return &Manager{
		db:       db,
		loader:   loader,
		ops:      ops,
		drops:    drops,
		pubsub:   pubsub,
		logger:   logger,
		defaults: defaults,
		sessions: make(map[int64]*Session),
	}
}

// Ops returns the container operations service sessions mutate through.
func (m *Manager) Ops() *container.Service { return m.ops }

// Drops returns the loot service, or nil when no drop tables are loaded.
func (m *Manager) Drops() *loot.Service { return m.drops }

// Session returns the live session for the account, loading or creating it on
// first access.
func (m *Manager) Session(ctx context.Context, accountID int64) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[accountID]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	sess, err := m.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have loaded the same account concurrently.
	if existing, ok := m.sessions[accountID]; ok {
		return existing, nil
	}
	m.sessions[accountID] = sess
	return sess, nil
}

// buildDefault builds a fresh inventory from the default templates.
func (m *Manager) buildDefault(accountID int64) (*container.Inventory, error) {
	inv := container.NewInventory(fmt.Sprintf("account-%d", accountID))
	for _, name := range m.defaults {
		c, err := m.loader.BuildContainer(name, m.ops, m.drops)
		if err != nil {
			return nil, err
		}
		inv.AddContainer(c)
	}
	return inv, nil
}

// watch registers change hooks on every container: mark the session dirty for
// the autosave pass and publish the container name for SSE observers.
func (m *Manager) watch(sess *Session) {
	for _, c := range sess.inv.Containers() {
		name := c.Name()
		c.OnChanged(func() {
			sess.dirty.Store(true)
			if m.pubsub != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := m.pubsub.Publish(ctx, EventChannel(sess.accountID), name); err != nil && m.logger != nil {
					m.logger.Warn("publish inventory event failed",
						zap.Int64("account", sess.accountID),
						zap.String("container", name),
						zap.Error(err),
					)
				}
			}
		})
	}
}

// Evict saves and drops the live session for an account. Used on logout.
func (m *Manager) Evict(ctx context.Context, accountID int64) error {
	m.mu.Lock()
	sess, ok := m.sessions[accountID]
	if ok {
		delete(m.sessions, accountID)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.save(ctx, sess, true)
}

// SaveAll persists every dirty session. Wired to the autosave scheduler.
func (m *Manager) SaveAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		if err := m.save(ctx, sess, false); err != nil && m.logger != nil {
			m.logger.Error("autosave failed",
				zap.Int64("account", sess.accountID),
				zap.Error(err),
			)
		}
	}
}
