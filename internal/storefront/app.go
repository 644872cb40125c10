package storefront

import (
	"github.com/sirupsen/logrus"

	"sweetshop/internal/authsignal"
	"sweetshop/internal/cart"
	"sweetshop/internal/checkout"
	"sweetshop/internal/guard"
	"sweetshop/internal/logging"
	"sweetshop/internal/navigation"
	"sweetshop/internal/notify"
	"sweetshop/internal/session"
)

// Deps are the collaborators of an App. Session, Signal and API are required.
type Deps struct {
	API       API
	Session   *session.Store
	Signal    *authsignal.Bus
	Navigator *navigation.Navigator
	Toasts    *notify.Center
	Cart      *cart.Cart
	Logger    logrus.FieldLogger
}

// App wires the pages together and reacts to the unauthorized signal.
type App struct {
	Login    *LoginForm
	Register *RegisterForm
	Catalog  *Catalog
	Admin    *Admin
	History  *History
	CartPage *CartPage

	session     *session.Store
	nav         *navigation.Navigator
	toasts      *notify.Center
	logger      logrus.FieldLogger
	unsubscribe func()
}

// NewApp builds the pages and subscribes to the unauthorized signal. Call Close to
// unsubscribe.
func NewApp(d Deps) *App {
	logger := logging.OrDiscard(d.Logger)
	nav := d.Navigator
	if nav == nil {
		nav = navigation.New(navigation.PathCatalog)
	}
	toasts := d.Toasts
	if toasts == nil {
		toasts = notify.NewCenter()
	}
	c := d.Cart
	if c == nil {
		c = cart.New()
	}

	register := &RegisterForm{api: d.API, nav: nav, logger: logger.WithField("page", "register")}
	a := &App{
		Login:    &LoginForm{api: d.API, session: d.Session, nav: nav, register: register, logger: logger.WithField("page", "login")},
		Register: register,
		Catalog:  &Catalog{api: d.API, cart: c, notifier: toasts, logger: logger.WithField("page", "catalog")},
		Admin:    &Admin{api: d.API, notifier: toasts, logger: logger.WithField("page", "admin")},
		History:  &History{api: d.API, logger: logger.WithField("page", "history")},
		CartPage: &CartPage{
			cart:     c,
			runner:   checkout.New(d.API, logger.WithField("component", "checkout")),
			notifier: toasts,
			logger:   logger.WithField("page", "cart"),
		},
		session: d.Session,
		nav:     nav,
		toasts:  toasts,
		logger:  logger,
	}
	a.unsubscribe = d.Signal.Subscribe(a.onUnauthorized)
	return a
}

// onUnauthorized drops the session and sends the user to the login view unless they
// are already there. Repeated calls cause no further navigation.
func (a *App) onUnauthorized() {
	a.logger.Warn("unauthorized signal received")
	a.session.Logout()
	if a.nav.Current() != navigation.PathLogin {
		a.nav.RedirectToLogin()
	}
}

// Close unsubscribes from the unauthorized signal.
func (a *App) Close() {
	a.unsubscribe()
}

func (a *App) Navigator() *navigation.Navigator { return a.nav }

func (a *App) Toasts() *notify.Center { return a.toasts }

func (a *App) Session() *session.Store { return a.session }

// Navigate moves to path. The registration notice only survives until the user
// moves on.
func (a *App) Navigate(path string) {
	a.Register.Success = ""
	a.nav.Navigate(path)
}

// Resolve evaluates the current route. A redirect decision is applied to the navigator
// before returning, remembering the requested path.
func (a *App) Resolve() (guard.Decision, string) {
	path := a.nav.Current()
	d := guard.Evaluate(path, a.session.State())
	if d == guard.RedirectLogin {
		a.nav.RedirectToLogin()
	}
	return d, path
}

// Reconcile runs the session's passive validation; it ends every action cycle.
func (a *App) Reconcile() session.State {
	return a.session.Reconcile()
}

// Logout ends the session from the header's logout action.
func (a *App) Logout() {
	a.session.Logout()
	a.nav.Replace(navigation.PathLogin)
}
