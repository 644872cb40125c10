package shell

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sweetshop/internal/domain"
	"sweetshop/internal/guard"
	"sweetshop/internal/navigation"
	"sweetshop/internal/storefront"
)

// errSilent aborts a command whose outcome is already on screen.
var errSilent = errors.New("")

// rootCommand builds a fresh command tree; flags must not leak between lines.
func (s *Shell) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sweetshop",
		Short:         "Sweet Shop storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(s.out)
	root.SetErr(s.out)

	root.AddCommand(
		s.loginCmd(), s.registerCmd(), s.logoutCmd(), s.whoamiCmd(),
		s.goCmd(), s.backCmd(), s.quitCmd(),
		s.listCmd(), s.searchCmd(), s.showCmd(), s.closeCmd(), s.buyCmd(), s.addCmd(),
		s.incCmd(), s.decCmd(), s.rmCmd(), s.clearCmd(), s.checkoutCmd(),
		s.saveCmd(), s.editCmd(), s.cancelCmd(), s.deleteCmd(), s.restockCmd(),
	)
	for _, shortcut := range []struct{ name, path, short string }{
		{"catalog", navigation.PathCatalog, "Open the catalog"},
		{"history", navigation.PathHistory, "Open your purchase history"},
		{"cart", navigation.PathCart, "Open your cart"},
		{"admin", navigation.PathAdmin, "Open the admin panel"},
	} {
		path := shortcut.path
		root.AddCommand(&cobra.Command{
			Use:   shortcut.name,
			Short: shortcut.short,
			Args:  cobra.NoArgs,
			Run:   func(*cobra.Command, []string) { s.app.Navigate(path) },
		})
	}
	return root
}

// allow checks that the page owning a command is reachable in the current session.
// A logged-out user is sent to the login view with the page remembered.
func (s *Shell) allow(path string) error {
	switch guard.Evaluate(path, s.app.Session().State()) {
	case guard.Render:
		return nil
	case guard.Interstitial:
		return errors.New("still loading your session, try again")
	case guard.RedirectLogin:
		s.app.Navigate(path)
		return errSilent
	case guard.AccessDenied:
		return errors.New("access denied: you don't have permission to do that")
	default:
		return fmt.Errorf("unknown page %s", path)
	}
}

func (s *Shell) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email, password string
			if len(args) > 0 {
				email = args[0]
			}
			if len(args) > 1 {
				password = args[1]
			}
			if s.app.Navigator().Current() != navigation.PathLogin {
				s.app.Navigate(navigation.PathLogin)
			}
			// failures are shown inline on the login view
			_ = s.app.Login.Submit(cmd.Context(), email, password)
			return nil
		},
	}
}

func (s *Shell) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <email> <password>",
		Short: "Create an account",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make([]string, 3)
			copy(fields, args)
			if s.app.Navigator().Current() != navigation.PathRegister {
				s.app.Navigate(navigation.PathRegister)
			}
			_ = s.app.Register.Submit(cmd.Context(), fields[0], fields[1], fields[2])
			return nil
		},
	}
}

func (s *Shell) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		Run:   func(*cobra.Command, []string) { s.app.Logout() },
	}
}

func (s *Shell) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			st := s.app.Session().State()
			if st.Identity == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "not signed in (%s)\n", st.Status)
				return
			}
			id := st.Identity
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s id=%s\n", id.Username, id.Email, id.Role, id.ID)
		},
	}
}

func (s *Shell) goCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "go <path>",
		Short: "Open a route: / /history /cart /admin /login /register",
		Args:  cobra.ExactArgs(1),
		Run:   func(_ *cobra.Command, args []string) { s.app.Navigate(args[0]) },
	}
}

func (s *Shell) backCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Return to the previous route",
		Args:  cobra.NoArgs,
		Run:   func(*cobra.Command, []string) { s.app.Navigator().Back() },
	}
}

func (s *Shell) quitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit"},
		Short:   "Leave the shop",
		Args:    cobra.NoArgs,
		RunE:    func(*cobra.Command, []string) error { return errQuit },
	}
}

func (s *Shell) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Reload the catalog",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := s.allow(navigation.PathCatalog); err != nil {
				return err
			}
			s.app.Navigate(navigation.PathCatalog)
			s.remount()
			return nil
		},
	}
}

func (s *Shell) searchCmd() *cobra.Command {
	var name, category, minPrice, maxPrice string
	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Search the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathCatalog); err != nil {
				return err
			}
			if len(args) == 1 && name == "" {
				name = args[0]
			}
			f := domain.SearchFilter{Name: name, Category: category}
			var err error
			if f.MinPrice, err = parseBound(minPrice); err != nil {
				return fmt.Errorf("--min: %w", err)
			}
			if f.MaxPrice, err = parseBound(maxPrice); err != nil {
				return fmt.Errorf("--max: %w", err)
			}
			if s.app.Navigator().Current() != navigation.PathCatalog {
				s.app.Navigate(navigation.PathCatalog)
				s.mount(cmd.Context(), navigation.PathCatalog)
				s.mounted = navigation.PathCatalog
			}
			s.app.Catalog.Search(cmd.Context(), f)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name contains")
	cmd.Flags().StringVar(&category, "category", "", "category contains")
	cmd.Flags().StringVar(&minPrice, "min", "", "minimum price")
	cmd.Flags().StringVar(&maxPrice, "max", "", "maximum price")
	return cmd
}

func parseBound(v string) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%q is not a price", v)
	}
	return decimal.NewNullDecimal(d), nil
}

func (s *Shell) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a sweet's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathCatalog); err != nil {
				return err
			}
			if _, ok := s.app.Catalog.Select(args[0]); !ok {
				return fmt.Errorf("no sweet %s in the list", args[0])
			}
			s.app.Navigator().Replace(navigation.PathCatalog)
			return nil
		},
	}
}

func (s *Shell) closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the detail view",
		Args:  cobra.NoArgs,
		Run:   func(*cobra.Command, []string) { s.app.Catalog.CloseDetail() },
	}
}

func (s *Shell) buyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <id>",
		Short: "Buy one unit now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathCatalog); err != nil {
				return err
			}
			// the outcome is reported as a toast
			_ = s.app.Catalog.Purchase(cmd.Context(), args[0])
			return nil
		},
	}
}

func (s *Shell) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>",
		Short: "Add one unit to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathCatalog); err != nil {
				return err
			}
			_ = s.app.Catalog.AddToCart(args[0])
			return nil
		},
	}
}

func (s *Shell) cartLineCmd(use, short string, fn func(id string)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathCart); err != nil {
				return err
			}
			fn(args[0])
			return nil
		},
	}
}

func (s *Shell) incCmd() *cobra.Command {
	return s.cartLineCmd("inc", "One more unit of a cart line", s.app.CartPage.Increment)
}

func (s *Shell) decCmd() *cobra.Command {
	return s.cartLineCmd("dec", "One less unit of a cart line", s.app.CartPage.Decrement)
}

func (s *Shell) rmCmd() *cobra.Command {
	return s.cartLineCmd("rm", "Remove a cart line", s.app.CartPage.Remove)
}

func (s *Shell) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := s.allow(navigation.PathCart); err != nil {
				return err
			}
			s.app.CartPage.Clear()
			return nil
		},
	}
}

func (s *Shell) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Buy everything in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.allow(navigation.PathCart); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Processing...")
			_ = s.app.CartPage.Checkout(cmd.Context())
			return nil
		},
	}
}

func (s *Shell) saveCmd() *cobra.Command {
	var form storefront.SweetForm
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Add a sweet, or update the one being edited",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.allow(navigation.PathAdmin); err != nil {
				return err
			}
			merged := s.app.Admin.Form
			flags := cmd.Flags()
			if flags.Changed("name") {
				merged.Name = form.Name
			}
			if flags.Changed("category") {
				merged.Category = form.Category
			}
			if flags.Changed("price") {
				merged.Price = form.Price
			}
			if flags.Changed("quantity") {
				merged.Quantity = form.Quantity
			}
			if flags.Changed("description") {
				merged.Description = form.Description
			}
			_ = s.app.Admin.Save(cmd.Context(), merged)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "sweet name")
	cmd.Flags().StringVar(&form.Category, "category", "", "category")
	cmd.Flags().StringVar(&form.Price, "price", "", "unit price")
	cmd.Flags().StringVar(&form.Quantity, "quantity", "", "units in stock")
	cmd.Flags().StringVar(&form.Description, "description", "", "optional description")
	return cmd
}

func (s *Shell) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Load a sweet into the admin form",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathAdmin); err != nil {
				return err
			}
			if !s.app.Admin.Edit(args[0]) {
				return fmt.Errorf("no sweet %s in the inventory", args[0])
			}
			return nil
		},
	}
}

func (s *Shell) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Reset the admin form",
		Args:  cobra.NoArgs,
		Run:   func(*cobra.Command, []string) { s.app.Admin.Cancel() },
	}
}

func (s *Shell) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sweet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathAdmin); err != nil {
				return err
			}
			_ = s.app.Admin.Delete(cmd.Context(), args[0])
			return nil
		},
	}
}

func (s *Shell) restockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restock <id> [amount]",
		Short: "Add stock to a sweet (default 5)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.allow(navigation.PathAdmin); err != nil {
				return err
			}
			amount := 5
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("amount %q is not a number", args[1])
				}
				amount = n
			}
			_ = s.app.Admin.Restock(cmd.Context(), args[0], amount)
			return nil
		},
	}
}
