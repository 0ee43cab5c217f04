package usecase

import (
	"sync"

	"agence-dashboard/config"
	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/cache"

	"github.com/google/uuid"
)

const workspacePrefix = "workspace:"

// WorkspaceManager hands out the tariff workspace of each session. Idle
// workspaces expire from the cache; every access extends their lifetime.
type WorkspaceManager struct {
	mu       sync.Mutex
	cache    cache.CacheService
	provider domain.GatewayProvider
	cfg      *config.Config
}

func NewWorkspaceManager(provider domain.GatewayProvider, cache cache.CacheService, cfg *config.Config) *WorkspaceManager {
	return &WorkspaceManager{
		cache:    cache,
		provider: provider,
		cfg:      cfg,
	}
}

// Get returns the session's workspace, creating an empty one on first use.
func (m *WorkspaceManager) Get(sess *domain.Session) *TariffUsecase {
	key := workspacePrefix + sess.ID.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	if val, found := m.cache.Get(key); found {
		ws := val.(*TariffUsecase)
		m.cache.Set(key, ws, m.cfg.WorkspaceIdleTTL)
		return ws
	}

	ws := NewTariffUsecase(m.provider.ForToken(sess.Token), m.cache, m.cfg)
	m.cache.Set(key, ws, m.cfg.WorkspaceIdleTTL)
	return ws
}

// Discard resets and forgets the workspace of a session.
func (m *WorkspaceManager) Discard(sessionID uuid.UUID) {
	key := workspacePrefix + sessionID.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	if val, found := m.cache.Get(key); found {
		val.(*TariffUsecase).Reset()
	}
	m.cache.Delete(key)
}

// DiscardAll drops every workspace, e.g. on shutdown.
func (m *WorkspaceManager) DiscardAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.DeletePrefix(workspacePrefix)
}
