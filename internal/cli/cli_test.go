package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gitshopapp/storefront/internal/auth"
)

func TestRootRegistersCommands(t *testing.T) {
	for _, name := range []string{"serve", "migrate", "seed", "token", "version"} {
		if cmd, _, err := Root().Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("expected %s command, got %v (err %v)", name, cmd, err)
		}
	}
}

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	t.Setenv("AUTH_TOKEN_SECRET", secret)

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--user-id", "12", "--email", "ada@example.com", "--staff"})
	t.Cleanup(func() { root.SetArgs(nil) })

	if err := Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	verifier, err := auth.NewVerifier(secret)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	shopper, err := verifier.Verify(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if shopper.UserID != 12 || shopper.Email != "ada@example.com" || !shopper.Staff {
		t.Fatalf("unexpected shopper %+v", shopper)
	}
}
