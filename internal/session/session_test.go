package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/online-shop/internal/session"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

func requestWithCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			r.AddCookie(c)
			return r
		}
	}
	t.Fatal("response did not set a session cookie")
	return nil
}

func TestManager_EnsureCreatesSessionAndCookie(t *testing.T) {
	m := session.NewManager(time.Hour)
	defer m.Close()

	rec := httptest.NewRecorder()
	s := m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, s)
	require.NotEmpty(t, s.Token)
	require.NotNil(t, s.Cart)
	require.True(t, s.Cart.IsEmpty())
	require.Nil(t, s.User)
	require.Equal(t, 1, m.Len())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, s.Token, cookie.Value)
	require.True(t, cookie.HttpOnly)
}

func TestManager_EnsureTokensAreUnique(t *testing.T) {
	m := session.NewManager(time.Hour)
	defer m.Close()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		s := m.Ensure(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.NotEqual(t, uuid.Nil.String(), s.Token)
		require.False(t, seen[s.Token], "token %q issued twice", s.Token)
		seen[s.Token] = true
	}
	require.Equal(t, 10, m.Len())
}

func TestManager_EnsureReturnsExistingSession(t *testing.T) {
	m := session.NewManager(time.Hour)
	defer m.Close()

	rec := httptest.NewRecorder()
	first := m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	second := m.Ensure(httptest.NewRecorder(), requestWithCookie(t, rec))

	require.Same(t, first, second)
	require.Equal(t, 1, m.Len())
}

func TestManager_GetWithoutCookie(t *testing.T) {
	m := session.NewManager(time.Hour)
	defer m.Close()

	s, ok := m.Get(httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, ok)
	require.Nil(t, s)
}

func TestManager_GetUnknownToken(t *testing.T) {
	m := session.NewManager(time.Hour)
	defer m.Close()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "no-such-token"})

	_, ok := m.Get(r)

	require.False(t, ok)
}

func TestManager_ExpiredSessionIsDropped(t *testing.T) {
	m := session.NewManager(time.Millisecond)
	defer m.Close()

	rec := httptest.NewRecorder()
	m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	time.Sleep(5 * time.Millisecond)

	_, ok := m.Get(requestWithCookie(t, rec))

	require.False(t, ok)
	require.Zero(t, m.Len())
}

func TestManager_ExpiryCreatesFreshSession(t *testing.T) {
	m := session.NewManager(time.Millisecond)
	defer m.Close()

	rec := httptest.NewRecorder()
	first := m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	time.Sleep(5 * time.Millisecond)

	second := m.Ensure(httptest.NewRecorder(), requestWithCookie(t, rec))

	require.NotEqual(t, first.Token, second.Token)
	require.True(t, second.Cart.IsEmpty())
	require.Nil(t, second.User)
}

func TestManager_DestroyDropsSessionAndExpiresCookie(t *testing.T) {
	m := session.NewManager(time.Hour)
	defer m.Close()

	rec := httptest.NewRecorder()
	m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, 1, m.Len())

	destroyRec := httptest.NewRecorder()
	m.Destroy(destroyRec, requestWithCookie(t, rec))

	require.Zero(t, m.Len())

	var cookie *http.Cookie
	for _, c := range destroyRec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, -1, cookie.MaxAge)
	require.Empty(t, cookie.Value)
}

func TestUserInfo_IsAdmin(t *testing.T) {
	var anonymous *session.UserInfo
	require.False(t, anonymous.IsAdmin())

	require.False(t, (&session.UserInfo{Role: user.RoleUser}).IsAdmin())
	require.True(t, (&session.UserInfo{Role: user.RoleAdmin}).IsAdmin())
}
