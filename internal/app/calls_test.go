package app

import (
	"slices"
	"testing"

	"github.com/dkeye/Tandem/internal/domain"
)

func TestCallTablePairAndClear(t *testing.T) {
	c := NewCallTable()
	if !c.IsAvailable("h1") {
		t.Fatal("fresh handle should be available")
	}
	c.MarkPair("h1", "h2", "s1")
	if c.IsAvailable("h1") || c.IsAvailable("h2") {
		t.Fatal("paired handles must be busy")
	}
	if got := c.SessionMembers("s1"); !slices.Equal(got, []domain.ConnHandle{"h1", "h2"}) {
		t.Fatalf("SessionMembers = %v", got)
	}
	if sid, ok := c.SessionOf("h2"); !ok || sid != "s1" {
		t.Fatalf("SessionOf = %q,%v", sid, ok)
	}

	if sid, ok := c.Clear("h1"); !ok || sid != "s1" {
		t.Fatalf("Clear = %q,%v", sid, ok)
	}
	if _, ok := c.Clear("h1"); ok {
		t.Fatal("second Clear should be a no-op")
	}
	c.Clear("h2")
	if handles, sessions := c.Counts(); handles != 0 || sessions != 0 {
		t.Fatalf("Counts = %d,%d after clearing", handles, sessions)
	}
	if got := c.SessionMembers("s1"); len(got) != 0 {
		t.Fatalf("members after clear = %v", got)
	}
}

func TestCallTableMarkMovesHandle(t *testing.T) {
	c := NewCallTable()
	c.MarkInCall("h1", "s1")
	c.MarkInCall("h1", "s2")
	if got := c.SessionMembers("s1"); len(got) != 0 {
		t.Fatalf("s1 still has %v", got)
	}
	if _, sessions := c.Counts(); sessions != 1 {
		t.Fatalf("sessions = %d, want 1", sessions)
	}
}
