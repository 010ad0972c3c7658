package problem

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

var (
	ErrNotFound       = errors.New("problem entry not found")
	ErrInvalidProblem = errors.New("invalid problem entry")
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ProblemEntry is a dual-coded clinical assertion. SourceCodeID and
// TargetCodeIDs are registry ids, not codes; they may dangle.
type ProblemEntry struct {
	ID             string    `db:"id" json:"id"`
	ClinicID       string    `db:"clinic_id" json:"clinic_id"`
	PatientRef     string    `db:"patient_id" json:"patient_id"`
	SourceCodeID   string    `db:"namaste_code_id" json:"namaste_code_id,omitempty"`
	TargetCodeIDs  []string  `db:"icd11_code_ids" json:"icd11_code_ids"`
	ClinicalStatus string    `db:"clinical_status" json:"clinical_status"`
	Severity       string    `db:"severity" json:"severity"`
	OnsetDate      *Date     `db:"onset_date" json:"onset_date,omitempty"`
	RecordedDate   *Date     `db:"recorded_date" json:"recorded_date,omitempty"`
	ClinicalNotes  string    `db:"clinical_notes" json:"clinical_notes,omitempty"`
	CreatedBy      string    `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

var validClinicalStatuses = map[string]bool{
	fhirmodels.ConditionActive:   true,
	fhirmodels.ConditionInactive: true,
	fhirmodels.ConditionResolved: true,
}

var validSeverities = map[string]bool{
	fhirmodels.SeverityMild:     true,
	fhirmodels.SeverityModerate: true,
	fhirmodels.SeveritySevere:   true,
}

func IsValidClinicalStatus(s string) bool { return validClinicalStatuses[s] }
func IsValidSeverity(s string) bool       { return validSeverities[s] }

// Validate checks the fields a new entry must carry. Dates in the wrong order
// are not an error; see DateOrderWarning.
func (p *ProblemEntry) Validate() error {
	if p.PatientRef == "" {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidProblem)
	}
	if p.SourceCodeID == "" && len(p.TargetCodeIDs) == 0 {
		return fmt.Errorf("%w: at least one of namaste_code_id or icd11_code_ids is required", ErrInvalidProblem)
	}
	if !IsValidClinicalStatus(p.ClinicalStatus) {
		return fmt.Errorf("%w: invalid clinical_status: %s", ErrInvalidProblem, p.ClinicalStatus)
	}
	if !IsValidSeverity(p.Severity) {
		return fmt.Errorf("%w: invalid severity: %s", ErrInvalidProblem, p.Severity)
	}
	return nil
}

// DateOrderWarning describes a recorded date that precedes the onset date,
// or returns "" when the dates are consistent or incomplete.
func (p *ProblemEntry) DateOrderWarning() string {
	if p.OnsetDate == nil || p.RecordedDate == nil {
		return ""
	}
	if p.RecordedDate.Before(*p.OnsetDate) {
		return fmt.Sprintf("problem %s: recorded date %s is before onset date %s", p.ID, p.RecordedDate, p.OnsetDate)
	}
	return ""
}
