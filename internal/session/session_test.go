// ABOUTME: Tests for the session manager lifecycle
// ABOUTME: Uses a fake AuthAPI plus an httptest backend for end-to-end wiring

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/tokenstore"
)

type fakeAPI struct {
	loginResult *models.LoginResult
	loginErr    error

	meUser  *models.UserProfile
	meErr   error
	meCalls int32
	// meHook runs inside Me before it returns
	meHook func()
}

func (f *fakeAPI) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAPI) Me(ctx context.Context) (*models.UserProfile, error) {
	atomic.AddInt32(&f.meCalls, 1)
	if f.meHook != nil {
		f.meHook()
	}
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := *f.meUser
	return &u, nil
}

func jean() *models.UserProfile {
	return &models.UserProfile{ID: "u1", Prenom: "Jean", Nom: "Martin", Email: "jean@example.com", Role: models.RoleFormateur}
}

func TestNewManager_NoToken(t *testing.T) {
	m := NewManager(tokenstore.NewMemoryStore(""), &fakeAPI{})

	s := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.False(t, s.Loading)
	assert.Nil(t, s.User)
}

func TestInit_NoTokenIsNoop(t *testing.T) {
	api := &fakeAPI{meUser: jean()}
	m := NewManager(tokenstore.NewMemoryStore(""), api)

	require.NoError(t, m.Init(context.Background()))
	assert.Zero(t, atomic.LoadInt32(&api.meCalls))
	assert.Equal(t, StateUnauthenticated, m.Snapshot().State())
}

func TestInit_StoredTokenValid(t *testing.T) {
	store := tokenstore.NewMemoryStore("abc123")
	m := NewManager(store, &fakeAPI{meUser: jean()})

	s := m.Snapshot()
	assert.Equal(t, StateValidating, s.State())
	assert.True(t, s.Loading)
	assert.Nil(t, s.User)

	require.NoError(t, m.Init(context.Background()))

	s = m.Snapshot()
	assert.Equal(t, StateAuthenticated, s.State())
	assert.False(t, s.Loading)
	require.NotNil(t, s.User)
	assert.Equal(t, "Jean", s.User.Prenom)
	assert.Equal(t, models.RoleFormateur, s.Role())
}

func TestInit_StoredTokenRejected(t *testing.T) {
	store := tokenstore.NewMemoryStore("expired")
	m := NewManager(store, &fakeAPI{meErr: &client.APIError{StatusCode: 401, Message: "Token invalide"}})

	err := m.Init(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))

	s := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.False(t, s.Loading)
	assert.Empty(t, s.Token)

	_, ok := store.Get()
	assert.False(t, ok, "rejected token must be removed from the store")
}

func TestInit_NetworkFailureLogsOut(t *testing.T) {
	store := tokenstore.NewMemoryStore("abc123")
	m := NewManager(store, &fakeAPI{meErr: &client.TransportError{BaseURL: "http://x", Err: errors.New("connection refused")}})

	require.Error(t, m.Init(context.Background()))
	assert.Equal(t, StateUnauthenticated, m.Snapshot().State())
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestLogin_ThenLogout(t *testing.T) {
	store := tokenstore.NewMemoryStore("")
	api := &fakeAPI{loginResult: &models.LoginResult{Token: "tok", User: *jean()}}
	m := NewManager(store, api)

	user, err := m.Login(context.Background(), models.Credentials{Email: "jean@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Jean", user.Prenom)
	assert.Equal(t, StateAuthenticated, m.Snapshot().State())

	stored, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "tok", stored)

	m.Logout()
	assert.Equal(t, StateUnauthenticated, m.Snapshot().State())
	_, ok = store.Get()
	assert.False(t, ok)

	// idempotent
	m.Logout()
	assert.Equal(t, StateUnauthenticated, m.Snapshot().State())
}

func TestLogin_InvalidCredentialsLeavesStateUntouched(t *testing.T) {
	store := tokenstore.NewMemoryStore("")
	loginErr := &client.APIError{StatusCode: 401, Message: "Identifiants invalides"}
	m := NewManager(store, &fakeAPI{loginErr: loginErr})

	_, err := m.Login(context.Background(), models.Credentials{Email: "a@b.com", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, "Identifiants invalides", err.Error())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)

	_, ok := store.Get()
	assert.False(t, ok)
	assert.Nil(t, m.Snapshot().User)
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	store := tokenstore.NewMemoryStore("")
	api := &fakeAPI{loginResult: &models.LoginResult{Token: "tok", User: *jean()}}
	m := NewManager(store, api)
	_, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	api.loginErr = errors.New("boom")
	_, err = m.Login(context.Background(), models.Credentials{})
	require.Error(t, err)

	s := m.Snapshot()
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestLogin_EmptyTokenRejected(t *testing.T) {
	store := tokenstore.NewMemoryStore("")
	m := NewManager(store, &fakeAPI{loginResult: &models.LoginResult{User: *jean()}})

	_, err := m.Login(context.Background(), models.Credentials{})
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, m.Snapshot().State())
}

func TestRefreshUser_NoTokenIsNoop(t *testing.T) {
	api := &fakeAPI{meUser: jean()}
	m := NewManager(tokenstore.NewMemoryStore(""), api)

	require.NoError(t, m.RefreshUser(context.Background()))
	assert.Zero(t, atomic.LoadInt32(&api.meCalls))
	assert.Nil(t, m.Snapshot().User)
}

func TestRefreshUser_ReplacesProfile(t *testing.T) {
	api := &fakeAPI{meUser: jean()}
	m := NewManager(tokenstore.NewMemoryStore("abc123"), api)
	require.NoError(t, m.Init(context.Background()))

	api.meUser = &models.UserProfile{ID: "u1", Prenom: "Jeanne", Role: models.RoleFormateur}
	require.NoError(t, m.RefreshUser(context.Background()))
	assert.Equal(t, "Jeanne", m.Snapshot().User.Prenom)
}

func TestRefreshUser_LateResponseAfterLogoutDiscarded(t *testing.T) {
	api := &fakeAPI{meUser: jean()}
	m := NewManager(tokenstore.NewMemoryStore("abc123"), api)
	require.NoError(t, m.Init(context.Background()))

	api.meHook = func() { m.Logout() }
	require.NoError(t, m.RefreshUser(context.Background()))

	s := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Nil(t, s.User)
}

func TestHandleUnauthorized_OnlyForCurrentToken(t *testing.T) {
	store := tokenstore.NewMemoryStore("")
	m := NewManager(store, &fakeAPI{loginResult: &models.LoginResult{Token: "new", User: *jean()}})
	_, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	m.HandleUnauthorized(context.Background(), "old")
	assert.Equal(t, StateAuthenticated, m.Snapshot().State())

	m.HandleUnauthorized(context.Background(), "new")
	assert.Equal(t, StateUnauthenticated, m.Snapshot().State())
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestSubscribe_ObservesTransitions(t *testing.T) {
	m := NewManager(tokenstore.NewMemoryStore("abc123"), &fakeAPI{meUser: jean()})

	var mu sync.Mutex
	var states []State
	unsubscribe := m.Subscribe(ListenerFunc(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State())
		mu.Unlock()
	}))

	require.NoError(t, m.Init(context.Background()))
	m.Logout()
	unsubscribe()
	m.Logout()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateAuthenticated, StateUnauthenticated}, states)
}

func TestSubscribe_ListenerEndsOnCurrentState(t *testing.T) {
	api := &fakeAPI{loginResult: &models.LoginResult{Token: "tok", User: *jean()}}
	m := NewManager(tokenstore.NewMemoryStore(""), api)

	var mu sync.Mutex
	var last Snapshot
	m.Subscribe(ListenerFunc(func(s Snapshot) {
		mu.Lock()
		last = s
		mu.Unlock()
	}))

	for range 2000 {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = m.Login(context.Background(), models.Credentials{})
		}()
		go func() {
			defer wg.Done()
			m.Logout()
		}()
		wg.Wait()

		mu.Lock()
		got := last.State()
		mu.Unlock()
		require.Equal(t, m.Snapshot().State(), got)
	}
}

func TestPublish_DropsSupersededSnapshot(t *testing.T) {
	m := NewManager(tokenstore.NewMemoryStore(""), &fakeAPI{})

	var states []State
	m.Subscribe(ListenerFunc(func(s Snapshot) {
		states = append(states, s.State())
	}))

	newer := Snapshot{}
	older := Snapshot{Token: "tok", User: jean()}
	m.publish(newer, 2)
	m.publish(older, 1)

	assert.Equal(t, []State{StateUnauthenticated}, states)
}

func TestFetchUser_ConcurrentCallsShareOneRequest(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{meUser: jean()}
	api.meHook = func() { <-release }
	m := NewManager(tokenstore.NewMemoryStore("abc123"), api)

	var wg sync.WaitGroup
	fetch := func() {
		defer wg.Done()
		u, err := m.fetchUser(context.Background(), "abc123")
		assert.NoError(t, err)
		assert.Equal(t, "Jean", u.Prenom)
	}

	wg.Add(1)
	go fetch()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&api.meCalls) == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go fetch()
	}
	// give the followers time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&api.meCalls))
}

func TestEndToEnd_WithHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer abc123" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Token invalide"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"_id": "u1", "prenom": "Jean", "role": "FORMATEUR"}})
		case "/formations":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Token expiré"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := tokenstore.NewMemoryStore("abc123")
	c := client.New(server.URL, client.WithTokenSource(store))
	m := NewManager(store, c)
	c.OnUnauthorized(m.HandleUnauthorized)

	require.NoError(t, m.Init(context.Background()))
	assert.Equal(t, StateAuthenticated, m.Snapshot().State())
	assert.Equal(t, "Jean", m.Snapshot().User.Prenom)

	_, err := c.ListFormations(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, m.Snapshot().State(), "401 on an authenticated call ends the session")
	_, ok := store.Get()
	assert.False(t, ok)
}
