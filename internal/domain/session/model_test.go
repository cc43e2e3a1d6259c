package session

import (
	"testing"
	"time"
)

func TestShouldProcess(t *testing.T) {
	t.Parallel()

	stored := Watermark{Session: TypeRace, Season: 2025, Round: 7}
	tests := []struct {
		name   string
		exists bool
		id     Identity
		want   bool
	}{
		{name: "no watermark yet", exists: false, id: Identity{Season: 2025, Round: 7}, want: true},
		{name: "same session", exists: true, id: Identity{Season: 2025, Round: 7}, want: false},
		{name: "next round", exists: true, id: Identity{Season: 2025, Round: 8}, want: true},
		{name: "new season same round number", exists: true, id: Identity{Season: 2026, Round: 7}, want: true},
		{name: "new season round one", exists: true, id: Identity{Season: 2026, Round: 1}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldProcess(stored, tt.exists, tt.id); got != tt.want {
				t.Fatalf("ShouldProcess()=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 18, 15, 0, 0, 0, time.UTC)
	w := Advance(TypeSprint, Identity{Season: 2025, Round: 6, RaceName: "Miami Grand Prix"}, "2025.1", now)
	if w.Session != TypeSprint || w.Season != 2025 || w.Round != 6 {
		t.Fatalf("unexpected watermark: %+v", w)
	}
	if ShouldProcess(w, true, Identity{Season: 2025, Round: 6}) {
		t.Fatalf("advanced watermark must mark the session as applied")
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	got, err := ParseType(" Qualifying ")
	if err != nil || got != TypeQualifying {
		t.Fatalf("ParseType(qualifying)=%q,%v", got, err)
	}
	if _, err := ParseType("practice"); err == nil {
		t.Fatalf("expected error for unknown session type")
	}
}
