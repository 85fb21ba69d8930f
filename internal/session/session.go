// Package session provides cookie-backed server-side sessions. The backing
// store is an in-memory map; sessions (and the carts inside them) do not
// survive a restart.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/online-shop/internal/cart"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

const (
	CookieName = "shop_session"

	sweepInterval = time.Minute
)

// UserInfo is the authenticated identity attached to a session after login.
type UserInfo struct {
	ID       uuid.UUID
	Username string
	Role     user.Role
}

func (u *UserInfo) IsAdmin() bool {
	return u != nil && u.Role == user.RoleAdmin
}

type Session struct {
	Token string
	User  *UserInfo
	Cart  *cart.Cart

	lastSeen time.Time
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	stopSweep chan struct{}
	wg        sync.WaitGroup
}

func NewManager(ttl time.Duration) *Manager {
	m := &Manager{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		stopSweep: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop()

	return m
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireSessions()
		case <-m.stopSweep:
			return
		}
	}
}

func (m *Manager) expireSessions() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, token)
		}
	}
}

// Close stops the sweep goroutine.
func (m *Manager) Close() {
	close(m.stopSweep)
	m.wg.Wait()
}

// Ensure returns the request's session, creating a fresh one (and setting the
// cookie) when none exists or the old one expired.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) *Session {
	if s, ok := m.Get(r); ok {
		return s
	}

	// NewV4 only fails when the system's entropy source does; a zero-value
	// token would make every session share one key, so fail hard instead.
	token := uuid.Must(uuid.NewV4())

	s := &Session{
		Token:    token.String(),
		Cart:     cart.New(),
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return s
}

// Get looks up the request's session without creating one.
func (m *Manager) Get(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	if s.lastSeen.Before(time.Now().Add(-m.ttl)) {
		delete(m.sessions, cookie.Value)
		return nil, false
	}
	s.lastSeen = time.Now()

	return s, true
}

// Destroy drops the session and expires the cookie. Used on logout and
// account deletion.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(CookieName)
	if err == nil {
		m.mu.Lock()
		delete(m.sessions, cookie.Value)
		m.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
