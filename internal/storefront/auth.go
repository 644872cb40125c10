package storefront

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/navigation"
	"sweetshop/internal/session"
)

// LoginForm exchanges credentials for a session.
type LoginForm struct {
	api     AuthAPI
	session *session.Store
	nav     *navigation.Navigator
	logger  logrus.FieldLogger
	// register carries the notice left by a completed registration.
	register *RegisterForm

	// Error is the inline message shown under the form.
	Error string
}

// Submit validates the form, logs in, and on success navigates to the page the user
// was sent away from (or the catalog).
func (f *LoginForm) Submit(ctx context.Context, email, password string) error {
	f.Error = ""
	if f.register != nil {
		f.register.Success = ""
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		f.Error = "Please provide email and password"
		return invalid(f.Error)
	}
	token, err := f.api.Login(ctx, apiclient.Credentials{Email: email, Password: password})
	if err != nil {
		f.Error = apiclient.Message(err, "Invalid credentials")
		f.logger.WithError(err).Info("login rejected")
		return err
	}
	if err := f.session.Login(token); err != nil {
		// the in-memory session is still usable
		f.logger.WithError(err).Warn("login: token not persisted")
	}
	f.nav.Replace(f.nav.TakeFrom(navigation.PathCatalog))
	return nil
}

// RegisterForm creates an account.
type RegisterForm struct {
	api    AuthAPI
	nav    *navigation.Navigator
	logger logrus.FieldLogger

	Error   string
	Success string
}

// Submit validates the form and registers; on success it moves to the login view.
func (f *RegisterForm) Submit(ctx context.Context, username, email, password string) error {
	f.Error, f.Success = "", ""
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		f.Error = "Please fill all fields"
		return invalid(f.Error)
	}
	if _, err := f.api.Register(ctx, apiclient.Registration{Username: username, Email: email, Password: password}); err != nil {
		f.Error = apiclient.Message(err, "Registration failed")
		f.logger.WithError(err).Info("registration rejected")
		return err
	}
	f.Success = "Registration successful, redirecting to login..."
	f.nav.Navigate(navigation.PathLogin)
	return nil
}
