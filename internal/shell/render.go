package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"sweetshop/internal/domain"
	"sweetshop/internal/guard"
	"sweetshop/internal/navigation"
)

func (s *Shell) money(d decimal.Decimal) string {
	return s.printer.Sprint(currency.Symbol(s.unit.Amount(d.InexactFloat64())))
}

func (s *Shell) table(header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(s.out)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetColumnSeparator(" ")
	t.SetHeaderLine(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func (s *Shell) renderHeader() {
	line := "Sweet Shop"
	if id := s.app.Session().State().Identity; id != nil {
		name := id.Username
		if name == "" {
			name = id.Email
		}
		line += fmt.Sprintf(" | %s (%s) | catalog history cart", name, id.Role)
		if id.IsAdmin() {
			line += " admin"
		}
		line += " logout"
	}
	fmt.Fprintln(s.out, line)
	fmt.Fprintln(s.out, strings.Repeat("-", len(line)))
}

func (s *Shell) renderView(d guard.Decision, path string) {
	switch d {
	case guard.Interstitial:
		fmt.Fprintln(s.out, "Loading...")
		return
	case guard.RedirectLogin:
		fmt.Fprintln(s.out, "Redirecting to login...")
		return
	case guard.AccessDenied:
		fmt.Fprintln(s.out, "Access Denied")
		fmt.Fprintln(s.out, "You don't have permission to access the admin panel.")
		return
	case guard.NotFound:
		fmt.Fprintf(s.out, "Page not found: %s\n", path)
		return
	}

	switch path {
	case navigation.PathLogin:
		s.renderLogin()
	case navigation.PathRegister:
		s.renderRegister()
	case navigation.PathCatalog:
		s.renderCatalog()
	case navigation.PathAdmin:
		s.renderAdmin()
	case navigation.PathHistory:
		s.renderHistory()
	case navigation.PathCart:
		s.renderCart()
	}
}

func (s *Shell) renderLogin() {
	fmt.Fprintln(s.out, "Login")
	if msg := s.app.Register.Success; msg != "" {
		fmt.Fprintf(s.out, "  %s\n", msg)
	}
	if msg := s.app.Login.Error; msg != "" {
		fmt.Fprintf(s.out, "  ! %s\n", msg)
	}
	fmt.Fprintln(s.out, "  login <email> <password>    Don't have an account? register <username> <email> <password>")
}

func (s *Shell) renderRegister() {
	fmt.Fprintln(s.out, "Register")
	if msg := s.app.Register.Error; msg != "" {
		fmt.Fprintf(s.out, "  ! %s\n", msg)
	}
	fmt.Fprintln(s.out, "  register <username> <email> <password>")
}

func stock(s domain.Sweet) string {
	if !s.InStock() {
		return "Sold Out"
	}
	return fmt.Sprintf("%d left", s.Quantity)
}

func (s *Shell) renderCatalog() {
	c := s.app.Catalog
	fmt.Fprintln(s.out, "Available Sweets")
	if c.Error != "" {
		fmt.Fprintf(s.out, "  ! %s\n", c.Error)
	}
	sweets := c.Sweets()
	if len(sweets) == 0 {
		fmt.Fprintln(s.out, "No sweets found. Try adjusting your search.")
	} else {
		t := s.table("ID", "Name", "Category", "Price", "Stock")
		for _, sw := range sweets {
			t.Append([]string{sw.ID, sw.Name, sw.Category, s.money(sw.Price), stock(sw)})
		}
		t.Render()
	}
	if sel, ok := c.Selected(); ok {
		fmt.Fprintf(s.out, "\n%s (%s)\n", sel.Name, sel.Category)
		if sel.Description != "" {
			fmt.Fprintf(s.out, "  %s\n", sel.Description)
		}
		fmt.Fprintf(s.out, "  %s  %s\n", s.money(sel.Price), stock(sel))
		if sel.InStock() {
			fmt.Fprintf(s.out, "  buy %s | add %s | close\n", sel.ID, sel.ID)
		}
	}
}

func (s *Shell) renderAdmin() {
	a := s.app.Admin
	fmt.Fprintln(s.out, "Admin Panel")
	if id := a.EditingID(); id != "" {
		fmt.Fprintf(s.out, "Edit Sweet %s: name=%q category=%q price=%q quantity=%q description=%q  (save --<field> ... | cancel)\n",
			id, a.Form.Name, a.Form.Category, a.Form.Price, a.Form.Quantity, a.Form.Description)
	} else {
		fmt.Fprintln(s.out, "Add New Sweet: save --name --category --price --quantity [--description]")
	}
	sweets := a.Sweets()
	if len(sweets) == 0 {
		fmt.Fprintln(s.out, "No sweets yet. Add one!")
		return
	}
	t := s.table("ID", "Name", "Category", "Price", "Stock")
	for _, sw := range sweets {
		t.Append([]string{sw.ID, sw.Name, sw.Category, s.money(sw.Price), strconv.Itoa(sw.Quantity)})
	}
	t.Render()
}

func (s *Shell) renderHistory() {
	h := s.app.History
	fmt.Fprintln(s.out, "Purchase History")
	if h.Error != "" {
		fmt.Fprintf(s.out, "  ! %s\n", h.Error)
	}
	purchases := h.Purchases()
	if len(purchases) == 0 {
		if h.Error == "" {
			fmt.Fprintln(s.out, "You haven't made any purchases yet. Visit the sweets shop!")
		}
		return
	}
	t := s.table("Sweet", "Category", "Price", "Date")
	for _, p := range purchases {
		t.Append([]string{p.SweetName, p.Category, s.money(p.Price), p.PurchasedAt.Local().Format("2006-01-02")})
	}
	t.Render()
	fmt.Fprintf(s.out, "Total Spent: %s\n", s.money(h.TotalSpent()))
}

func (s *Shell) renderCart() {
	c := s.app.CartPage.Cart()
	fmt.Fprintln(s.out, "Shopping Cart")
	lines := c.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "Your cart is empty. Start shopping!")
		return
	}
	t := s.table("ID", "Name", "Category", "Each", "Qty", "Subtotal")
	for _, l := range lines {
		t.Append([]string{l.SweetID, l.Name, l.Category, s.money(l.UnitPrice), strconv.Itoa(l.Quantity), s.money(l.Subtotal())})
	}
	t.Render()
	fmt.Fprintf(s.out, "Items: %d  Total: %s\n", c.TotalItems(), s.money(c.TotalPrice()))
	fmt.Fprintln(s.out, "  inc/dec/rm <id> | clear | checkout")
}
