package metadata

import "testing"

func TestSortDescending(t *testing.T) {
	p := &Pubfile{Releases: []Release{
		{Version: "1.0.0"},
		{Version: "2.1.0"},
		{Version: "1.5.0"},
	}}
	p.SortDescending()

	want := []string{"2.1.0", "1.5.0", "1.0.0"}
	for i, r := range p.Releases {
		if r.Version != want[i] {
			t.Errorf("Releases[%d] = %s, want %s (full order: %v)", i, r.Version, want[i], p.Releases)
		}
	}
}

func TestMatchConstraintPicksNewestSatisfying(t *testing.T) {
	p := &Pubfile{Releases: []Release{
		{Version: "2.1.0", Revision: "r3"},
		{Version: "1.5.0", Revision: "r2"},
		{Version: "1.0.0", Revision: "r1"},
	}}
	p.SortDescending()

	release, ok, err := p.MatchConstraint("^1.0.0")
	if err != nil {
		t.Fatalf("MatchConstraint returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a match for ^1.0.0")
	}
	if release.Version != "1.5.0" {
		t.Errorf("MatchConstraint(^1.0.0) = %s, want 1.5.0 (newest within range)", release.Version)
	}
}

func TestMatchConstraintNoMatch(t *testing.T) {
	p := &Pubfile{Releases: []Release{{Version: "1.0.0"}}}
	_, ok, err := p.MatchConstraint("^2.0.0")
	if err != nil {
		t.Fatalf("MatchConstraint returned error: %v", err)
	}
	if ok {
		t.Errorf("expected no match for ^2.0.0 against only 1.0.0")
	}
}

func TestMatchConstraintInvalidConstraint(t *testing.T) {
	p := &Pubfile{Releases: []Release{{Version: "1.0.0"}}}
	if _, _, err := p.MatchConstraint("not-a-constraint!!"); err == nil {
		t.Errorf("expected an error for an invalid constraint string")
	}
}
