package problem

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year != 2024 || d.Month != time.January || d.Day != 15 {
		t.Errorf("unexpected date %+v", d)
	}
	if d.String() != "2024-01-15" {
		t.Errorf("expected 2024-01-15, got %s", d)
	}
	if _, err := ParseDate("15/01/2024"); err == nil {
		t.Error("expected error for non ISO date")
	}
	if _, err := ParseDate("2024-01-15T10:00:00Z"); err == nil {
		t.Error("expected error for a timestamp")
	}
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	d := DateOf(time.Date(2024, 3, 1, 1, 0, 0, 0, ist))
	if d.String() != "2024-03-01" {
		t.Errorf("expected 2024-03-01, got %s", d)
	}
}

func TestDate_JSON(t *testing.T) {
	var p ProblemEntry
	body := `{"patient_id":"p1","onset_date":"2024-01-15","recorded_date":"2024-01-20"}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.OnsetDate == nil || p.OnsetDate.String() != "2024-01-15" {
		t.Errorf("unexpected onset %v", p.OnsetDate)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"recorded_date":"2024-01-20"`) {
		t.Errorf("expected recorded_date in output, got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"onset_date":"yesterday"}`), &p); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestProblemEntry_Validate(t *testing.T) {
	valid := func() ProblemEntry {
		return ProblemEntry{
			PatientRef:     "patient-1",
			SourceCodeID:   "nam-001",
			TargetCodeIDs:  []string{"icd-001"},
			ClinicalStatus: "active",
			Severity:       "moderate",
		}
	}

	tests := []struct {
		name   string
		mutate func(p *ProblemEntry)
		ok     bool
	}{
		{"valid", func(p *ProblemEntry) {}, true},
		{"targets only", func(p *ProblemEntry) { p.SourceCodeID = "" }, true},
		{"source only", func(p *ProblemEntry) { p.TargetCodeIDs = nil }, true},
		{"no codes", func(p *ProblemEntry) { p.SourceCodeID = ""; p.TargetCodeIDs = nil }, false},
		{"missing patient", func(p *ProblemEntry) { p.PatientRef = "" }, false},
		{"bad status", func(p *ProblemEntry) { p.ClinicalStatus = "remission" }, false},
		{"bad severity", func(p *ProblemEntry) { p.Severity = "critical" }, false},
		{"empty severity", func(p *ProblemEntry) { p.Severity = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidProblem) {
				t.Errorf("expected ErrInvalidProblem, got %v", err)
			}
		})
	}
}

func TestProblemEntry_DateOrderWarning(t *testing.T) {
	onset, _ := ParseDate("2024-02-10")
	before, _ := ParseDate("2024-02-01")
	after, _ := ParseDate("2024-02-12")

	p := ProblemEntry{ID: "prob-1", OnsetDate: &onset, RecordedDate: &after}
	if w := p.DateOrderWarning(); w != "" {
		t.Errorf("expected no warning, got %q", w)
	}

	p.RecordedDate = &before
	if w := p.DateOrderWarning(); !strings.Contains(w, "prob-1") {
		t.Errorf("expected warning naming the problem, got %q", w)
	}

	p.OnsetDate = nil
	if w := p.DateOrderWarning(); w != "" {
		t.Errorf("expected no warning without onset, got %q", w)
	}

	same := onset
	p.OnsetDate, p.RecordedDate = &onset, &same
	if w := p.DateOrderWarning(); w != "" {
		t.Errorf("expected no warning for same day, got %q", w)
	}
}
