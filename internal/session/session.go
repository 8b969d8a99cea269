// ABOUTME: Session manager owning the authenticated-identity lifecycle
// ABOUTME: Seeds from the token store, validates via /auth/me and broadcasts changes

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/tokenstore"
)

// State is the derived lifecycle state of a session
type State int

const (
	StateUnauthenticated State = iota
	StateValidating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session at one point in time
type Snapshot struct {
	Token   string
	User    *models.UserProfile
	Loading bool
}

// State derives the lifecycle state from the snapshot fields
func (s Snapshot) State() State {
	switch {
	case s.Token != "" && s.User != nil:
		return StateAuthenticated
	case s.Token != "" && s.Loading:
		return StateValidating
	default:
		return StateUnauthenticated
	}
}

// Role returns the user's role, or "" when unauthenticated
func (s Snapshot) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// AuthAPI is the slice of the API client the manager depends on
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	Me(ctx context.Context) (*models.UserProfile, error)
}

// Listener is notified with the new snapshot after every session change
type Listener interface {
	SessionChanged(Snapshot)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Snapshot)

func (f ListenerFunc) SessionChanged(s Snapshot) { f(s) }

// Manager owns the session. It is the only writer of session state and of
// the token store.
type Manager struct {
	store tokenstore.Store
	api   AuthAPI

	mu      sync.RWMutex
	token   string
	user    *models.UserProfile
	loading bool

	// seq numbers mutations under mu; publishMu orders delivery by seq
	seq       uint64
	publishMu sync.Mutex
	delivered uint64

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int

	group singleflight.Group
}

// NewManager seeds a session from the token store. When a token exists the
// session starts in Validating; call Init to complete validation.
func NewManager(store tokenstore.Store, api AuthAPI) *Manager {
	m := &Manager{
		store:     store,
		api:       api,
		listeners: make(map[int]Listener),
	}
	if token, ok := store.Get(); ok {
		m.token = token
		m.loading = true
	}
	return m
}

// Snapshot returns the current session
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{Token: m.token, Loading: m.loading}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// changedLocked records a mutation. mu must be held for writing.
func (m *Manager) changedLocked() (Snapshot, uint64) {
	m.seq++
	return m.snapshotLocked(), m.seq
}

// Get returns the in-memory token, so a Manager can serve as a client.TokenSource
func (m *Manager) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Subscribe registers l and returns a function that removes it
func (m *Manager) Subscribe(l Listener) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

// publish delivers s to every listener. Deliveries are serialized and a
// snapshot older than one already delivered is dropped, so listeners always
// end on the latest state. Listeners must not mutate the session.
func (m *Manager) publish(s Snapshot, seq uint64) {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()
	if seq <= m.delivered {
		slog.Debug("Dropping superseded session snapshot", "seq", seq, "delivered", m.delivered)
		return
	}
	m.delivered = seq

	m.listenersMu.Lock()
	ls := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.listenersMu.Unlock()

	for _, l := range ls {
		l.SessionChanged(s)
	}
}

// Init performs the startup validation pass. With no stored token it is a
// no-op. Any failure logs out. Loading is false when Init returns.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.RLock()
	token, loading := m.token, m.loading
	m.mu.RUnlock()

	if token == "" || !loading {
		return nil
	}

	slog.Debug("Validating stored session")
	user, err := m.fetchUser(ctx, token)
	if err != nil {
		slog.Info("Stored session rejected, logging out", "error", err)
		m.logoutToken(token)
		return fmt.Errorf("session validation failed: %w", err)
	}

	m.mu.Lock()
	if m.token != token {
		// Logged out or replaced by a login while validating
		m.loading = false
		s, seq := m.changedLocked()
		m.mu.Unlock()
		m.publish(s, seq)
		return nil
	}
	m.user = user
	m.loading = false
	s, seq := m.changedLocked()
	m.mu.Unlock()

	slog.Info("Session restored", "user", user.Email, "role", user.Role)
	m.publish(s, seq)
	return nil
}

// Login authenticates with creds. On failure the store and session are left
// exactly as they were and the API error is returned unchanged.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error) {
	res, err := m.api.Login(ctx, creds)
	if err != nil {
		slog.Debug("Login rejected", "email", creds.Email, "error", err)
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}

	if err := m.store.Set(res.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	user := res.User
	m.mu.Lock()
	m.token = res.Token
	m.user = &user
	m.loading = false
	s, seq := m.changedLocked()
	m.mu.Unlock()

	slog.Info("Logged in", "user", user.Email, "role", user.Role)
	m.publish(s, seq)

	out := user
	return &out, nil
}

// Logout clears the token store and the in-memory session. Safe to call at
// any time, including when already logged out.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.clearLocked()
}

// logoutToken logs out only if token is still the current one, so a late
// failure for an old token cannot end a newer session.
func (m *Manager) logoutToken(token string) {
	m.mu.Lock()
	if m.token != token {
		m.loading = false
		m.mu.Unlock()
		return
	}
	m.clearLocked()
}

// clearLocked must be called with mu held and releases it
func (m *Manager) clearLocked() {
	if err := m.store.Clear(); err != nil {
		slog.Warn("Failed to clear token store", "error", err)
	}

	changed := m.token != "" || m.user != nil || m.loading
	m.token = ""
	m.user = nil
	m.loading = false
	s, seq := m.changedLocked()
	m.mu.Unlock()

	if changed {
		slog.Info("Logged out")
		m.publish(s, seq)
	}
}

// HandleUnauthorized is the API client's 401 hook. token is the credential
// the rejected request carried.
func (m *Manager) HandleUnauthorized(ctx context.Context, token string) {
	m.logoutToken(token)
}

// RefreshUser re-fetches the profile. Without a token it does nothing.
// A response that arrives after the token changed is discarded.
func (m *Manager) RefreshUser(ctx context.Context) error {
	token, ok := m.Get()
	if !ok {
		return nil
	}

	user, err := m.fetchUser(ctx, token)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.token != token {
		m.mu.Unlock()
		slog.Debug("Discarding profile fetched for a replaced session")
		return nil
	}
	m.user = user
	m.loading = false
	s, seq := m.changedLocked()
	m.mu.Unlock()

	m.publish(s, seq)
	return nil
}

// fetchUser calls /auth/me once per token no matter how many callers wait
func (m *Manager) fetchUser(ctx context.Context, token string) (*models.UserProfile, error) {
	v, err, _ := m.group.Do("me:"+token, func() (interface{}, error) {
		return m.api.Me(ctx)
	})
	if err != nil {
		return nil, err
	}
	user := *(v.(*models.UserProfile))
	return &user, nil
}
