package identifier

import "testing"

func TestNewWidthAndCharset(t *testing.T) {
	id := New()
	if len(id) != Width {
		t.Fatalf("expected %d digits, got %q", Width, id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit %q in identifier %q", r, id)
		}
	}
}

func TestNewDistinctInSequence(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate identifier %q after %d generations", id, i)
		}
		seen[id] = true
	}
}
