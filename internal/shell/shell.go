// Package shell is the interactive terminal front end of the storefront. Each input
// line is one user action: it runs a command, renders the current route, reconciles
// the session and prints pending notifications.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sweetshop/internal/guard"
	"sweetshop/internal/logging"
	"sweetshop/internal/navigation"
	"sweetshop/internal/storefront"
)

// errQuit ends the read loop.
var errQuit = errors.New("quit")

// maxResolve bounds how many times one cycle re-resolves the route after a page load
// moved the navigator (for example on a rejected token).
const maxResolve = 3

// Shell drives a storefront App from line-oriented input.
type Shell struct {
	app     *storefront.App
	out     io.Writer
	logger  logrus.FieldLogger
	printer *message.Printer
	unit    currency.Unit

	// mounted is the route whose page data is loaded.
	mounted string
}

// New returns a Shell writing to out.
func New(app *storefront.App, out io.Writer, logger logrus.FieldLogger) *Shell {
	return &Shell{
		app:     app,
		out:     out,
		logger:  logging.OrDiscard(logger),
		printer: message.NewPrinter(language.AmericanEnglish),
		unit:    currency.USD,
	}
}

// Run renders the initial route and then executes lines from in until EOF, "quit" or
// ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	s.Cycle(ctx)
	scanner := bufio.NewScanner(in)
	for {
		s.prompt()
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := s.Exec(ctx, scanner.Text()); errors.Is(err, errQuit) {
			return nil
		}
	}
}

func (s *Shell) prompt() {
	fmt.Fprintf(s.out, "sweetshop %s> ", s.app.Navigator().Current())
}

// split breaks a command line into words with shell quoting rules; a '#' starts a
// comment.
func split(line string) ([]string, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", line, err)
	}
	return words, nil
}

// Exec runs one line and completes the action cycle. It returns errQuit for "quit".
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	args, err := split(line)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return nil
	}
	root := s.rootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errQuit) {
			return errQuit
		}
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
	s.Cycle(ctx)
	return nil
}

// Cycle resolves and renders the current route, loads page data on first entry,
// reconciles the session and flushes toasts. When reconciling changes the session
// status the route is rendered again.
func (s *Shell) Cycle(ctx context.Context) {
	before := s.app.Session().State().Status
	s.render(ctx)
	after := s.app.Reconcile().Status
	if after != before {
		s.logger.WithFields(logrus.Fields{"from": before, "to": after}).Debug("shell: session changed, re-rendering")
		s.render(ctx)
	}
	s.flushToasts()
}

func (s *Shell) render(ctx context.Context) {
	var (
		d    guard.Decision
		path string
	)
	for i := 0; i < maxResolve; i++ {
		d, path = s.app.Resolve()
		if d == guard.RedirectLogin {
			continue
		}
		if d != guard.Render {
			s.mounted = ""
			break
		}
		if path == s.mounted {
			break
		}
		s.mount(ctx, path)
		s.mounted = path
		if s.app.Navigator().Current() == path {
			break
		}
	}
	s.renderHeader()
	s.renderView(d, path)
}

// mount loads the data a page shows when it is entered.
func (s *Shell) mount(ctx context.Context, path string) {
	var err error
	switch path {
	case navigation.PathCatalog:
		err = s.app.Catalog.Load(ctx)
	case navigation.PathAdmin:
		err = s.app.Admin.Load(ctx)
	case navigation.PathHistory:
		err = s.app.History.Load(ctx)
	}
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Debug("shell: page load failed")
	}
}

// remount forces the current page to reload on the next render.
func (s *Shell) remount() {
	s.mounted = ""
}

func (s *Shell) flushToasts() {
	for _, t := range s.app.Toasts().Drain() {
		fmt.Fprintf(s.out, "[%s] %s\n", t.Kind, t.Message)
	}
}
