package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIntervalOverlaps(t *testing.T) {
	existing := Interval{Start: NewDate(2025, 6, 1), End: NewDate(2025, 6, 5)}

	tests := []struct {
		name string
		in   Interval
		want bool
	}{
		{"fully contained", Interval{NewDate(2025, 6, 2), NewDate(2025, 6, 4)}, true},
		{"partial overlap at end", Interval{NewDate(2025, 6, 4), NewDate(2025, 6, 10)}, true},
		{"partial overlap at start", Interval{NewDate(2025, 5, 28), NewDate(2025, 6, 2)}, true},
		{"exact match", Interval{NewDate(2025, 6, 1), NewDate(2025, 6, 5)}, true},
		{"enclosing", Interval{NewDate(2025, 5, 1), NewDate(2025, 7, 1)}, true},
		{"adjacent after", Interval{NewDate(2025, 6, 5), NewDate(2025, 6, 10)}, false},
		{"adjacent before", Interval{NewDate(2025, 5, 28), NewDate(2025, 6, 1)}, false},
		{"disjoint", Interval{NewDate(2025, 7, 1), NewDate(2025, 7, 3)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Overlaps(tt.in); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got := tt.in.Overlaps(existing); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %v", tt.in)
			}
		})
	}
}

func TestIntervalNights(t *testing.T) {
	in := Interval{Start: NewDate(2025, 6, 1), End: NewDate(2025, 6, 5)}
	if got := in.Nights(); got != 4 {
		t.Errorf("Nights() = %d, want 4", got)
	}
}

func TestDateJSON(t *testing.T) {
	var req UpdateReservationRequest
	if err := json.Unmarshal([]byte(`{"start_date":"2025-06-02"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.StartDate == nil || !req.StartDate.Equal(NewDate(2025, 6, 2)) {
		t.Fatalf("start date = %v, want 2025-06-02", req.StartDate)
	}
	if req.EndDate != nil {
		t.Fatalf("end date should stay nil, got %v", req.EndDate)
	}

	out, err := json.Marshal(Interval{Start: NewDate(2025, 6, 1), End: NewDate(2025, 6, 5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"start_date":"2025-06-01","end_date":"2025-06-05"}`; string(out) != want {
		t.Errorf("marshal = %s, want %s", out, want)
	}

	if err := json.Unmarshal([]byte(`{"start_date":"06/01/2025"}`), &req); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
		mention  string
	}{
		{StatusPending, StatusConfirmed, true, ""},
		{StatusPending, StatusRejected, true, ""},
		{StatusConfirmed, StatusFinished, true, ""},
		{StatusConfirmed, StatusCancelled, true, ""},
		{StatusConfirmed, StatusConfirmed, false, "PENDING"},
		{StatusPending, StatusFinished, false, "CONFIRMED"},
		{StatusPending, StatusCancelled, false, "CONFIRMED"},
		{StatusConfirmed, StatusRejected, false, "PENDING"},
		{StatusRejected, StatusConfirmed, false, "PENDING"},
		{StatusFinished, StatusCancelled, false, "CONFIRMED"},
		{StatusPending, StatusPending, false, "invalid"},
		{StatusPending, Status("ARCHIVED"), false, "invalid"},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.allowed {
				if err != nil {
					t.Fatalf("expected transition to be allowed, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected transition to be rejected")
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error %q should mention %q", err.Error(), tt.mention)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusFinished, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" confirmed ")
	if err != nil {
		t.Fatalf("ParseStatus: %v", err)
	}
	if got != StatusConfirmed {
		t.Errorf("got %s, want CONFIRMED", got)
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestOverlapFilterIgnores(t *testing.T) {
	f := OverlapFilter{IgnoreStatuses: ClosedStatuses}
	if !f.Ignores(StatusCancelled) || !f.Ignores(StatusRejected) {
		t.Error("closed statuses should be ignored")
	}
	if f.Ignores(StatusFinished) {
		t.Error("finished reservations still occupied the property")
	}
}
