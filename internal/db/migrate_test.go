package db

import (
	"strings"
	"testing"
)

func TestMigrationsAreOrderedAndChecksummed(t *testing.T) {
	t.Parallel()

	migrations, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations() error = %v", err)
	}
	if len(migrations) < 3 {
		t.Fatalf("expected at least 3 migrations, got %d", len(migrations))
	}
	for i, m := range migrations {
		if i > 0 && migrations[i-1].Name >= m.Name {
			t.Fatalf("migrations out of order: %s before %s", migrations[i-1].Name, m.Name)
		}
		if m.Checksum != ComputeChecksum(m.Content) {
			t.Fatalf("checksum mismatch for %s", m.Name)
		}
		if strings.TrimSpace(m.Content) == "" {
			t.Fatalf("migration %s is empty", m.Name)
		}
	}
	if !strings.Contains(migrations[0].Content, "CREATE TABLE products") {
		t.Fatalf("first migration should create the catalog tables")
	}
}

func TestComputeChecksumIsStable(t *testing.T) {
	t.Parallel()

	a := ComputeChecksum("CREATE TABLE x ();")
	b := ComputeChecksum("CREATE TABLE x ();")
	c := ComputeChecksum("CREATE TABLE y ();")
	if a != b || a == c || len(a) != 64 {
		t.Fatalf("unexpected checksums %q %q %q", a, b, c)
	}
}
