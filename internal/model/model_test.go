package model

import "testing"

func TestGroupByLanguage(t *testing.T) {
	// Starred order deliberately differs from id order; groups come out
	// with ids sorted regardless.
	repos := []Repository{
		{ID: 4, Language: "Go"},
		{ID: 2, Language: "Rust"},
		{ID: 3, Language: ""},
		{ID: 1, Language: "Go"},
	}
	g := GroupByLanguage(repos)

	if len(g) != 3 {
		t.Fatalf("groups = %d, want 3", len(g))
	}
	if got := g["Go"]; len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Fatalf("Go group = %v, want sorted [1 4]", got)
	}
	if got := g[UnknownLanguage]; len(got) != 1 || got[0] != 3 {
		t.Fatalf("unknown group = %v", got)
	}
}

func TestGroupByLanguage_Empty(t *testing.T) {
	if g := GroupByLanguage(nil); len(g) != 0 {
		t.Fatalf("expected empty group, got %v", g)
	}
}
