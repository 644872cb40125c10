package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sweetshop/internal/credential"
)

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

type failingCreds struct {
	credential.Store
}

func (failingCreds) Save(string) error { return errors.New("disk full") }

func TestNew_EmptyStorageIsLoggedOut(t *testing.T) {
	s := New(credential.NewMemory(""), NewJWTDecoder(), nil)
	st := s.State()
	if st.Status != LoggedOut || st.Token != "" || st.Identity != nil {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestNew_HydratedTokenIsPendingUntilReconcile(t *testing.T) {
	tok := signedToken(t, Claims{ID: "u1", Role: "admin"})
	s := New(credential.NewMemory(tok), NewJWTDecoder(), nil)

	if st := s.State(); st.Status != Pending || st.Identity != nil {
		t.Fatalf("expected pending before reconcile, got %+v", st)
	}

	st := s.Reconcile()
	if st.Status != Authenticated || st.Identity == nil || st.Identity.ID != "u1" || !st.Identity.IsAdmin() {
		t.Fatalf("expected authenticated admin, got %+v", st)
	}
}

func TestNew_UndecodableHydratedTokenIsCleared(t *testing.T) {
	creds := credential.NewMemory("not-a-jwt")
	s := New(creds, NewJWTDecoder(), nil)

	st := s.Reconcile()
	if st.Status != LoggedOut || st.Token != "" || st.Identity != nil {
		t.Fatalf("expected logged out, got %+v", st)
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatalf("expected stored token cleared, got %q", stored)
	}
}

func TestLogin_IdentityVisibleImmediately(t *testing.T) {
	creds := credential.NewMemory("")
	s := New(creds, NewJWTDecoder(), nil)
	tok := signedToken(t, Claims{ID: "u2", Email: "kid@example.com"})

	if err := s.Login(tok); err != nil {
		t.Fatalf("login: %v", err)
	}

	st := s.State()
	if st.Status != Authenticated || st.Identity == nil || st.Identity.ID != "u2" {
		t.Fatalf("expected identity right after login, got %+v", st)
	}
	if st.Identity.Role != "user" {
		t.Fatalf("expected default role user, got %q", st.Identity.Role)
	}
	if stored, _ := creds.Load(); stored != tok {
		t.Fatalf("expected token persisted")
	}
	if again := s.Reconcile(); again.Status != Authenticated {
		t.Fatalf("reconcile after good login should keep session, got %+v", again)
	}
}

func TestLogin_UndecodableTokenNeverAuthenticates(t *testing.T) {
	creds := credential.NewMemory("")
	s := New(creds, NewJWTDecoder(), nil)

	if err := s.Login("garbage"); err != nil {
		t.Fatalf("login should not fail on decode errors: %v", err)
	}
	if st := s.State(); st.Status != Pending || st.Identity != nil {
		t.Fatalf("expected pending, got %+v", st)
	}
	if stored, _ := creds.Load(); stored != "garbage" {
		t.Fatalf("expected token persisted before decode, got %q", stored)
	}

	if st := s.Reconcile(); st.Status != LoggedOut {
		t.Fatalf("expected logout after reconcile, got %+v", st)
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatalf("expected stored token cleared")
	}
}

func TestLogin_ReportsPersistenceFailure(t *testing.T) {
	s := New(failingCreds{credential.NewMemory("")}, NewJWTDecoder(), nil)
	tok := signedToken(t, Claims{ID: "u3"})

	if err := s.Login(tok); err == nil {
		t.Fatalf("expected persistence error")
	}
	if st := s.State(); st.Status != Authenticated {
		t.Fatalf("in-memory session should still be authenticated, got %+v", st)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	creds := credential.NewMemory("")
	s := New(creds, NewJWTDecoder(), nil)
	if err := s.Login(signedToken(t, Claims{ID: "u4"})); err != nil {
		t.Fatalf("login: %v", err)
	}

	s.Logout()
	s.Logout()

	if st := s.State(); st.Status != LoggedOut || st.Token != "" {
		t.Fatalf("expected logged out, got %+v", st)
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatalf("expected stored token cleared")
	}
}

func TestNew_HydratedTokenWithoutSubjectIsCleared(t *testing.T) {
	creds := credential.NewMemory(signedToken(t, Claims{Email: "x@example.com", Role: "admin"}))
	s := New(creds, NewJWTDecoder(), nil)

	if st := s.Reconcile(); st.Status != LoggedOut || st.Identity != nil {
		t.Fatalf("expected logged out without a subject, got %+v", st)
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatalf("expected stored token cleared, got %q", stored)
	}
}

func TestJWTDecoder(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	cases := []struct {
		name    string
		token   string
		wantID  string
		wantErr bool
	}{
		{"id claim", signedToken(t, Claims{ID: "a", Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}}), "a", false},
		{"userId claim", signedToken(t, Claims{UserID: "b"}), "b", false},
		{"sub claim", signedToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "c"}}), "c", false},
		{"no subject", signedToken(t, Claims{Email: "x@example.com"}), "", true},
		{"empty", "", "", true},
		{"malformed", "a.b", "", true},
	}
	dec := NewJWTDecoder()
	for _, tc := range cases {
		id, err := dec.Decode(tc.token)
		if tc.wantErr {
			if !errors.Is(err, ErrUndecodable) {
				t.Fatalf("%s: expected ErrUndecodable, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if id.ID != tc.wantID {
			t.Fatalf("%s: expected id %q, got %q", tc.name, tc.wantID, id.ID)
		}
	}

	admin, _ := dec.Decode(cases[0].token)
	if admin.Role != "admin" || !admin.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected decoded identity %+v", admin)
	}
}
