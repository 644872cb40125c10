// Package navigation tracks the storefront's current route.
package navigation

import (
	"strings"
	"sync"
)

const (
	PathLogin    = "/login"
	PathRegister = "/register"
	PathCatalog  = "/"
	PathHistory  = "/history"
	PathAdmin    = "/admin"
	PathCart     = "/cart"
)

// Navigator holds the current path and, after a guard redirect, the path the user
// originally asked for.
type Navigator struct {
	mu      sync.Mutex
	current string
	from    string
	history []string
}

// New starts at path.
func New(path string) *Navigator {
	return &Navigator{current: Clean(path)}
}

// Current returns the active path.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate pushes path onto the history and makes it current.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, n.current)
	n.current = Clean(path)
}

// Replace makes path current without recording the previous one.
func (n *Navigator) Replace(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = Clean(path)
}

// RedirectToLogin replaces the current route with the login view and remembers where
// the user was headed.
func (n *Navigator) RedirectToLogin() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != PathLogin {
		n.from = n.current
	}
	n.current = PathLogin
}

// TakeFrom returns and forgets the remembered origin, or fallback when there is none.
func (n *Navigator) TakeFrom(fallback string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	from := n.from
	n.from = ""
	if from == "" || from == PathLogin || from == PathRegister {
		return fallback
	}
	return from
}

// Back returns to the previous path, if any.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return false
	}
	n.current = n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	return true
}

// Clean normalizes a route path: leading slash, no trailing slash except for root.
func Clean(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathCatalog
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathCatalog
		}
	}
	return path
}
