// Package guard decides what a route shows for a given session state.
package guard

import (
	"sweetshop/internal/navigation"
	"sweetshop/internal/session"
)

// Decision is the outcome of evaluating a route.
type Decision int

const (
	// Render shows the requested view.
	Render Decision = iota
	// Interstitial shows a loading placeholder while the identity is being decoded.
	Interstitial
	// RedirectLogin sends the user to the login view.
	RedirectLogin
	// AccessDenied shows an access-denied view in place, without redirecting.
	AccessDenied
	// NotFound is returned for unknown paths.
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Interstitial:
		return "interstitial"
	case RedirectLogin:
		return "redirect-login"
	case AccessDenied:
		return "access-denied"
	case NotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Route describes the access rules of one path.
type Route struct {
	Path      string
	Title     string
	Protected bool
	AdminOnly bool
}

var routes = []Route{
	{Path: navigation.PathLogin, Title: "Login"},
	{Path: navigation.PathRegister, Title: "Register"},
	{Path: navigation.PathCatalog, Title: "Available Sweets", Protected: true},
	{Path: navigation.PathHistory, Title: "Purchase History", Protected: true},
	{Path: navigation.PathCart, Title: "Shopping Cart", Protected: true},
	{Path: navigation.PathAdmin, Title: "Admin Panel", Protected: true, AdminOnly: true},
}

// Routes returns the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds the route for path.
func Lookup(path string) (Route, bool) {
	path = navigation.Clean(path)
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Evaluate applies the route's rules to st.
func Evaluate(path string, st session.State) Decision {
	route, ok := Lookup(path)
	if !ok {
		return NotFound
	}
	if !route.Protected {
		return Render
	}
	switch st.Status {
	case session.Pending:
		return Interstitial
	case session.LoggedOut:
		return RedirectLogin
	}
	if route.AdminOnly && (st.Identity == nil || !st.Identity.IsAdmin()) {
		return AccessDenied
	}
	return Render
}
