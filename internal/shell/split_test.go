package shell

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"list", []string{"list"}},
		{"  login  a@b.c   pw ", []string{"login", "a@b.c", "pw"}},
		{`save --name "Dark Chocolate" --price 2.5`, []string{"save", "--name", "Dark Chocolate", "--price", "2.5"}},
		{`save --description 'it''s good'`, []string{"save", "--description", "its good"}},
		{`save --description "say \"hi\""`, []string{"save", "--description", `say "hi"`}},
		{`search ""`, []string{"search", ""}},
		{"catalog # back to the shop", []string{"catalog"}},
		{"", nil},
	}
	for _, tc := range cases {
		got, err := split(tc.line)
		if err != nil {
			t.Fatalf("split(%q): %v", tc.line, err)
		}
		if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("split(%q) mismatch (-want +got):\n%s", tc.line, diff)
		}
	}

	if _, err := split(`login "open`); err == nil {
		t.Fatalf("expected unterminated quote error")
	}
}
