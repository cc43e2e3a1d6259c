package roster

import "testing"

func TestCountChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous []string
		next     []string
		want     int
	}{
		{name: "identical", previous: []string{"a", "b"}, next: []string{"b", "a"}, want: 0},
		{name: "one swapped", previous: []string{"a", "b"}, next: []string{"a", "c"}, want: 1},
		{name: "all swapped", previous: []string{"a", "b"}, next: []string{"c", "d"}, want: 2},
		{name: "duplicates counted once", previous: []string{"a", "a", "b"}, next: []string{"b"}, want: 1},
		{name: "growing roster is free", previous: []string{"a"}, next: []string{"a", "b"}, want: 0},
		{name: "empty previous", previous: nil, next: []string{"a"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountChanges(tt.previous, tt.next); got != tt.want {
				t.Fatalf("CountChanges()=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestApplyEdit(t *testing.T) {
	t.Parallel()

	const cost = 25
	tests := []struct {
		name    string
		limit   int
		changes int
		want    Outcome
	}{
		{name: "exactly at limit", limit: 2, changes: 2, want: Outcome{Changes: 2, RemainingFreeChanges: 0}},
		{name: "one over limit", limit: 2, changes: 3, want: Outcome{Changes: 3, Penalty: 25, RemainingFreeChanges: 0}},
		{name: "under limit", limit: 2, changes: 1, want: Outcome{Changes: 1, RemainingFreeChanges: 1}},
		{name: "no changes", limit: 2, changes: 0, want: Outcome{RemainingFreeChanges: 2}},
		{name: "exhausted limit", limit: 0, changes: 2, want: Outcome{Changes: 2, Penalty: 50, RemainingFreeChanges: 0}},
		{name: "unlimited", limit: Unlimited, changes: 10, want: Outcome{Changes: 10, RemainingFreeChanges: Unlimited}},
		{name: "any negative is unlimited", limit: -5, changes: 3, want: Outcome{Changes: 3, RemainingFreeChanges: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyEdit(tt.limit, tt.changes, cost)
			if got != tt.want {
				t.Fatalf("ApplyEdit(%d,%d)=%+v want=%+v", tt.limit, tt.changes, got, tt.want)
			}
		})
	}
}

func TestApplyEdit_LimitNeverNegative(t *testing.T) {
	t.Parallel()

	for limit := 0; limit <= 5; limit++ {
		for changes := 0; changes <= 10; changes++ {
			got := ApplyEdit(limit, changes, 25)
			if got.RemainingFreeChanges < 0 {
				t.Fatalf("limit=%d changes=%d produced negative remaining %d", limit, changes, got.RemainingFreeChanges)
			}
			if got.Penalty < 0 {
				t.Fatalf("limit=%d changes=%d produced negative penalty %d", limit, changes, got.Penalty)
			}
		}
	}
}
