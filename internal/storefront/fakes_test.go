package storefront

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/authsignal"
	"sweetshop/internal/credential"
	"sweetshop/internal/domain"
	"sweetshop/internal/navigation"
	"sweetshop/internal/notify"
	"sweetshop/internal/session"
)

// fakeAPI is an in-memory backend. Nil func fields fall back to simple defaults.
type fakeAPI struct {
	sweets    []domain.Sweet
	purchases []domain.Purchase

	loginFn    func(apiclient.Credentials) (string, error)
	registerFn func(apiclient.Registration) (string, error)
	listErr    error
	searchErr  error
	purchaseFn func(id string) error
	saveErr    error
	deleteErr  error
	restockErr error
	historyErr error

	searched  []domain.SearchFilter
	purchased []string
	created   []domain.SweetInput
	updated   map[string]domain.SweetInput
	deleted   []string
	restocked map[string]int
}

func (f *fakeAPI) Login(_ context.Context, c apiclient.Credentials) (string, error) {
	if f.loginFn != nil {
		return f.loginFn(c)
	}
	return "", &apiclient.APIError{Status: 400}
}

func (f *fakeAPI) Register(_ context.Context, r apiclient.Registration) (string, error) {
	if f.registerFn != nil {
		return f.registerFn(r)
	}
	return "User registered", nil
}

func (f *fakeAPI) ListSweets(context.Context) ([]domain.Sweet, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Sweet, len(f.sweets))
	copy(out, f.sweets)
	return out, nil
}

func (f *fakeAPI) SearchSweets(_ context.Context, filter domain.SearchFilter) ([]domain.Sweet, error) {
	f.searched = append(f.searched, filter)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return filter.Filter(f.sweets), nil
}

func (f *fakeAPI) PurchaseSweet(_ context.Context, id string) error {
	f.purchased = append(f.purchased, id)
	if f.purchaseFn != nil {
		return f.purchaseFn(id)
	}
	for i := range f.sweets {
		if f.sweets[i].ID == id {
			f.sweets[i].Quantity--
		}
	}
	return nil
}

func (f *fakeAPI) CreateSweet(_ context.Context, in domain.SweetInput) (domain.Sweet, error) {
	if f.saveErr != nil {
		return domain.Sweet{}, f.saveErr
	}
	f.created = append(f.created, in)
	s := domain.Sweet{ID: in.Name, Name: in.Name, Category: in.Category, Price: in.Price, Quantity: in.Quantity}
	f.sweets = append(f.sweets, s)
	return s, nil
}

func (f *fakeAPI) UpdateSweet(_ context.Context, id string, in domain.SweetInput) (domain.Sweet, error) {
	if f.saveErr != nil {
		return domain.Sweet{}, f.saveErr
	}
	if f.updated == nil {
		f.updated = map[string]domain.SweetInput{}
	}
	f.updated[id] = in
	return domain.Sweet{ID: id, Name: in.Name}, nil
}

func (f *fakeAPI) DeleteSweet(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) RestockSweet(_ context.Context, id string, amount int) (domain.Sweet, error) {
	if f.restockErr != nil {
		return domain.Sweet{}, f.restockErr
	}
	if f.restocked == nil {
		f.restocked = map[string]int{}
	}
	f.restocked[id] += amount
	return domain.Sweet{ID: id}, nil
}

func (f *fakeAPI) ListPurchases(context.Context) ([]domain.Purchase, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.purchases, nil
}

func signedToken(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		ID:    id,
		Email: id + "@sweetshop.test",
		Role:  role,
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

type harness struct {
	app   *App
	api   *fakeAPI
	creds credential.Store
	bus   *authsignal.Bus
}

func newHarness(t *testing.T, api *fakeAPI, storedToken, start string) *harness {
	t.Helper()
	creds := credential.NewMemory(storedToken)
	bus := authsignal.NewBus()
	app := NewApp(Deps{
		API:       api,
		Session:   session.New(creds, session.NewJWTDecoder(), nil),
		Signal:    bus,
		Navigator: navigation.New(start),
		Toasts:    notify.NewCenter(),
	})
	t.Cleanup(app.Close)
	return &harness{app: app, api: api, creds: creds, bus: bus}
}

func lastToast(t *testing.T, c *notify.Center) notify.Toast {
	t.Helper()
	toasts := c.Drain()
	if len(toasts) == 0 {
		t.Fatalf("expected a toast")
	}
	return toasts[len(toasts)-1]
}
