package shell

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/authsignal"
	"sweetshop/internal/credential"
	"sweetshop/internal/domain"
	"sweetshop/internal/httpserver"
	"sweetshop/internal/navigation"
	sweetrepo "sweetshop/internal/repository/sweet"
	userrepo "sweetshop/internal/repository/user"
	"sweetshop/internal/seed"
	authsvc "sweetshop/internal/service/auth"
	sweetsvc "sweetshop/internal/service/sweet"
	"sweetshop/internal/session"
	"sweetshop/internal/storefront"
)

type shop struct {
	shell  *Shell
	app    *storefront.App
	creds  credential.Store
	out    *bytes.Buffer
	sweets map[string]domain.Sweet
}

// newShop starts a seeded in-memory backend and a storefront shell talking to it.
func newShop(t *testing.T, storedToken string) *shop {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	sweets := sweetsvc.New(sweetrepo.NewMemory(), nil)
	auth := authsvc.New(userrepo.NewMemory(), "e2e-secret", time.Hour, authsvc.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, seed.Apply(ctx, sweets, auth, nil))

	byName := map[string]domain.Sweet{}
	list, err := sweets.List(ctx)
	require.NoError(t, err)
	for _, s := range list {
		byName[s.Name] = s
	}

	backend := httptest.NewServer(httpserver.New("", nil, nil, httpserver.Deps{Auth: auth, Sweets: sweets}).Handler())
	t.Cleanup(backend.Close)

	creds := credential.NewMemory(storedToken)
	bus := authsignal.NewBus()
	client, err := apiclient.New(apiclient.Config{BaseURL: backend.URL, Credentials: creds, Signal: bus})
	require.NoError(t, err)

	app := storefront.NewApp(storefront.Deps{
		API:     client,
		Session: session.New(creds, session.NewJWTDecoder(), nil),
		Signal:  bus,
	})
	t.Cleanup(app.Close)

	out := &bytes.Buffer{}
	return &shop{shell: New(app, out, nil), app: app, creds: creds, out: out, sweets: byName}
}

// run executes one line and returns what it printed.
func (s *shop) run(t *testing.T, line string) string {
	t.Helper()
	s.out.Reset()
	require.NoError(t, s.shell.Exec(context.Background(), line))
	return s.out.String()
}

func TestShell_ShoppingSession(t *testing.T) {
	s := newShop(t, "")
	ctx := context.Background()

	s.shell.Cycle(ctx)
	assert.Equal(t, navigation.PathLogin, s.app.Navigator().Current(), "logged-out user lands on login")
	assert.Contains(t, s.out.String(), "Login")

	out := s.run(t, "register ann ann@example.com secret1")
	assert.Contains(t, out, "Registration successful")
	assert.Equal(t, navigation.PathLogin, s.app.Navigator().Current())

	out = s.run(t, "login ann@example.com wrong-password")
	assert.Contains(t, out, "Invalid credentials")
	assert.NotContains(t, out, "Registration successful")

	out = s.run(t, "login ann@example.com secret1")
	require.Equal(t, navigation.PathCatalog, s.app.Navigator().Current())
	assert.Contains(t, out, "Available Sweets")
	assert.Contains(t, out, "Chocolate Truffle")
	assert.Contains(t, out, "Sold Out")

	truffle := s.sweets["Chocolate Truffle"]
	s.run(t, "add "+truffle.ID)
	out = s.run(t, "add "+truffle.ID)
	assert.Contains(t, out, "Added Chocolate Truffle to cart")

	out = s.run(t, "cart")
	assert.Contains(t, out, "Shopping Cart")
	assert.Contains(t, out, "Items: 2")

	out = s.run(t, "checkout")
	assert.Contains(t, out, "Processing...")
	assert.Contains(t, out, "Successfully purchased 2 item(s)!")
	assert.Contains(t, out, "Your cart is empty")

	out = s.run(t, "history")
	assert.Contains(t, out, "Purchase History")
	assert.Contains(t, out, "Chocolate Truffle")
	assert.Contains(t, out, "Total Spent")

	worms := s.sweets["Sour Worms"]
	out = s.run(t, "buy "+worms.ID)
	assert.Contains(t, out, "Out of stock")

	out = s.run(t, "admin")
	assert.Contains(t, out, "Access Denied")

	out = s.run(t, "whoami")
	assert.Contains(t, out, "role=user")

	s.run(t, "logout")
	assert.Equal(t, navigation.PathLogin, s.app.Navigator().Current())
	token, err := s.creds.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestShell_AdminManagesInventory(t *testing.T) {
	s := newShop(t, "")
	s.shell.Cycle(context.Background())

	s.run(t, "login "+seed.AdminEmail+" "+seed.AdminPassword)
	out := s.run(t, "admin")
	require.Equal(t, navigation.PathAdmin, s.app.Navigator().Current())
	assert.Contains(t, out, "Admin Panel")

	out = s.run(t, `save --name "Maple Fudge" --category Fudge --price 3.10 --quantity 4`)
	assert.Contains(t, out, "Sweet added successfully")
	assert.Contains(t, out, "Maple Fudge")

	out = s.run(t, `save --name "No Price" --category Fudge --price abc --quantity 1`)
	assert.Contains(t, out, "Price must be a number")

	worms := s.sweets["Sour Worms"]
	out = s.run(t, "restock "+worms.ID+" 3")
	assert.Contains(t, out, "Sweet restocked successfully")

	out = s.run(t, "delete "+worms.ID)
	assert.Contains(t, out, "Sweet deleted successfully")
	assert.NotContains(t, out, "Sour Worms")
}

func TestShell_RejectedTokenReturnsToLogin(t *testing.T) {
	// Decodable, but signed with a key the backend does not know.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		ID:       "u-1",
		Email:    "ghost@example.com",
		Username: "ghost",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("not-the-backend-key"))
	require.NoError(t, err)

	s := newShop(t, forged)
	s.shell.Cycle(context.Background())

	out := s.out.String()
	assert.Contains(t, out, "Loading...", "hydrated token is pending until reconciled")
	assert.Equal(t, navigation.PathLogin, s.app.Navigator().Current())
	assert.Equal(t, session.LoggedOut, s.app.Session().State().Status)

	token, err := s.creds.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	s.run(t, "login ann@example.com secret1")
	assert.Contains(t, s.out.String(), "Invalid credentials")
}

func TestShell_Quit(t *testing.T) {
	s := newShop(t, "")
	err := s.shell.Run(context.Background(), strings.NewReader("go /register\nquit\nlist\n"))
	require.NoError(t, err)
	assert.Contains(t, s.out.String(), "sweetshop /register> ")
	assert.Equal(t, navigation.PathRegister, s.app.Navigator().Current(), "lines after quit are not run")
}
