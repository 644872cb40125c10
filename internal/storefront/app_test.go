package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/authsignal"
	"sweetshop/internal/credential"
	"sweetshop/internal/guard"
	"sweetshop/internal/navigation"
	"sweetshop/internal/notify"
	"sweetshop/internal/session"
)

func TestApp_ResolveFollowsSessionState(t *testing.T) {
	token := signedToken(t, "u1", "user")
	h := newHarness(t, &fakeAPI{}, token, navigation.PathAdmin)

	d, _ := h.app.Resolve()
	assert.Equal(t, guard.Interstitial, d, "hydrated token is pending until reconciled")

	h.app.Reconcile()
	d, _ = h.app.Resolve()
	assert.Equal(t, guard.AccessDenied, d)
	assert.Equal(t, navigation.PathAdmin, h.app.Navigator().Current(), "access denied does not redirect")

	h.app.Navigate(navigation.PathCatalog)
	d, _ = h.app.Resolve()
	assert.Equal(t, guard.Render, d)
}

func TestApp_InvalidHydratedTokenLogsOut(t *testing.T) {
	h := newHarness(t, &fakeAPI{}, "garbage", navigation.PathHistory)
	h.app.Reconcile()
	d, _ := h.app.Resolve()
	assert.Equal(t, guard.RedirectLogin, d)
	assert.Equal(t, navigation.PathLogin, h.app.Navigator().Current())
	stored, _ := h.creds.Load()
	assert.Empty(t, stored)
}

func TestApp_UnauthorizedSignalLogsOutAndRedirects(t *testing.T) {
	token := signedToken(t, "u1", "admin")
	h := newHarness(t, &fakeAPI{}, token, navigation.PathAdmin)
	h.app.Reconcile()

	h.bus.Publish()
	h.bus.Publish()

	assert.Equal(t, session.LoggedOut, h.app.Session().State().Status)
	assert.Equal(t, navigation.PathLogin, h.app.Navigator().Current())
	assert.Equal(t, navigation.PathAdmin, h.app.Navigator().TakeFrom(navigation.PathCatalog))
}

func TestApp_UnauthorizedOnLoginPageStaysPut(t *testing.T) {
	h := newHarness(t, &fakeAPI{}, "", navigation.PathLogin)
	h.bus.Publish()
	assert.Equal(t, navigation.PathLogin, h.app.Navigator().Current())
	assert.False(t, h.app.Navigator().Back(), "no navigation recorded")
}

// Two requests rejected inside the cool-down produce exactly one redirect.
func TestApp_DoubleRejectionNavigatesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
	}))
	t.Cleanup(srv.Close)

	token := signedToken(t, "u1", "user")
	creds := credential.NewMemory(token)
	bus := authsignal.NewBus()
	now := time.Unix(1_700_000_000, 0)
	client, err := apiclient.New(apiclient.Config{
		BaseURL:     srv.URL,
		Credentials: creds,
		Signal:      bus,
		Clock:       func() time.Time { return now },
	})
	require.NoError(t, err)

	redirects := 0
	bus.Subscribe(func() { redirects++ })

	nav := navigation.New(navigation.PathHistory)
	app := NewApp(Deps{
		API:       client,
		Session:   session.New(creds, session.NewJWTDecoder(), nil),
		Signal:    bus,
		Navigator: nav,
		Toasts:    notify.NewCenter(),
	})
	t.Cleanup(app.Close)
	app.Reconcile()

	assert.Error(t, app.History.Load(context.Background()))
	assert.Error(t, app.Catalog.Load(context.Background()))

	assert.Equal(t, 1, redirects)
	assert.Equal(t, navigation.PathLogin, nav.Current())
	assert.Equal(t, session.LoggedOut, app.Session().State().Status)
}

func TestApp_Logout(t *testing.T) {
	token := signedToken(t, "u1", "user")
	h := newHarness(t, &fakeAPI{}, token, navigation.PathCatalog)
	h.app.Reconcile()
	h.app.Logout()
	assert.Equal(t, navigation.PathLogin, h.app.Navigator().Current())
	assert.Equal(t, session.LoggedOut, h.app.Session().State().Status)
}
