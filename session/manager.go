package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ngfw-form/form"
	"ngfw-form/override"
	"ngfw-form/preset"
	"ngfw-form/uistate"
	"ngfw-form/uisync"
)

var ErrNotFound = errors.New("session not found")

// Config tunes a Manager.
type Config struct {
	// DefaultDevice is selected when a page does not name one.
	DefaultDevice preset.DeviceID
	// Sections are the collapsible sections of the page.
	Sections []string
	// Backlog caps the events retained per session.
	Backlog int
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.DefaultDevice == "" {
		c.DefaultDevice = preset.Pro2
	}
	if c.Sections == nil {
		c.Sections = uisync.DefaultSections
	}
	if c.Backlog <= 0 {
		c.Backlog = defaultBacklog
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// CreateRequest describes a page load.
type CreateRequest struct {
	// ClientID scopes persisted section states to one browser.
	ClientID string `json:"client_id"`
	Device   string `json:"device"`
	// Query is the page's raw query string.
	Query string `json:"query"`
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    uistate.Store
	cfg      Config
}

func NewManager(store uistate.Store, cfg Config) *Manager {
	cfg.defaults()
	if store == nil {
		store = uistate.NewMemoryStore()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		cfg:      cfg,
	}
}

// Create initializes a form the way a page load does: default preset, device
// preset, query-string overrides, then the cosmetic layer.
func (m *Manager) Create(req CreateRequest) (*Session, error) {
	raw := req.Device
	if raw == "" {
		raw = string(m.cfg.DefaultDevice)
	}
	dev, err := preset.ParseDevice(raw)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:         uuid.New().String(),
		ClientID:   req.ClientID,
		Device:     dev,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
		backlog:    newBacklog(m.cfg.Backlog),
		done:       make(chan struct{}),
	}

	s.state = form.New(nil)
	s.resolver = preset.NewResolver(s.state)
	if err := s.resolver.ApplyDevice(dev); err != nil {
		return nil, err
	}
	s.overrides, err = override.Load(s.state, req.Query)
	if err != nil {
		return nil, fmt.Errorf("apply overrides: %w", err)
	}
	s.state.Subscribe(s.publishField)
	s.ui, err = uisync.Attach(s.state, m.store, uisync.Options{
		Scope:    req.ClientID,
		Sections: m.cfg.Sections,
		Notify:   s.publishUI,
	})
	if err != nil {
		return nil, err
	}
	if err := s.ui.SelectDevice(dev); err != nil {
		s.ui.Detach()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.cfg.Logger.Info("form session created",
		"id", s.ID, "device", dev, "overrides", len(s.overrides))
	return s, nil
}

// List returns a summary of every live session.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s.Summary())
	}
	return list
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Kill(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	s.close()
	m.cfg.Logger.Info("form session closed", "id", id)
	return nil
}

// Expire closes sessions idle for longer than maxIdle and returns how many
// were removed.
func (m *Manager) Expire(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var stale []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if sum := s.Summary(); !sum.Connected && sum.LastActive.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if m.Kill(id) == nil {
			n++
		}
	}
	return n
}
