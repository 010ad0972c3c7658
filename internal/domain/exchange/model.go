package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("exchange request not found")
	ErrInvalidRequest    = errors.New("invalid exchange request")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("clinic may not change this request")
	ErrConflict          = errors.New("exchange request changed concurrently")
)

const (
	TypeProblemList   = "problem_list"
	TypeFullRecord    = "full_record"
	TypeSpecificCodes = "specific_codes"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// Directions for listing, seen from the caller's clinic.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

var validTypes = map[string]bool{
	TypeProblemList:   true,
	TypeFullRecord:    true,
	TypeSpecificCodes: true,
}

// transitions lists the statuses each status may move to. Rejected and
// completed are final.
var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

func IsValidType(t string) bool { return validTypes[t] }

func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Request asks another clinic for a patient's data.
type Request struct {
	ID                 string          `db:"id" json:"id"`
	RequestingClinicID string          `db:"requesting_clinic_id" json:"requesting_clinic_id"`
	TargetClinicID     string          `db:"target_clinic_id" json:"target_clinic_id"`
	PatientRef         string          `db:"patient_id" json:"patient_id"`
	RequestType        string          `db:"request_type" json:"request_type"`
	RequestData        json.RawMessage `db:"request_data" json:"request_data,omitempty"`
	Status             string          `db:"status" json:"status"`
	RequestedBy        string          `db:"requested_by" json:"requested_by"`
	ApprovedBy         string          `db:"approved_by" json:"approved_by,omitempty"`
	ResponseData       json.RawMessage `db:"response_data" json:"response_data,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// Validate checks a new request. specific_codes requests must say which
// codes they want in request_data.
func (r *Request) Validate() error {
	if r.TargetClinicID == "" {
		return fmt.Errorf("%w: target_clinic_id is required", ErrInvalidRequest)
	}
	if r.TargetClinicID == r.RequestingClinicID {
		return fmt.Errorf("%w: a clinic cannot request data from itself", ErrInvalidRequest)
	}
	if r.PatientRef == "" {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidRequest)
	}
	if !IsValidType(r.RequestType) {
		return fmt.Errorf("%w: invalid request_type: %s", ErrInvalidRequest, r.RequestType)
	}
	if len(r.RequestData) > 0 && !json.Valid(r.RequestData) {
		return fmt.Errorf("%w: request_data is not valid JSON", ErrInvalidRequest)
	}
	if r.RequestType == TypeSpecificCodes && isEmptyJSON(r.RequestData) {
		return fmt.Errorf("%w: request_data is required for specific_codes", ErrInvalidRequest)
	}
	return nil
}

// Involves reports whether clinicID is either party to the request.
func (r *Request) Involves(clinicID string) bool {
	return r.RequestingClinicID == clinicID || r.TargetClinicID == clinicID
}

func isEmptyJSON(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte("{}")) || bytes.Equal(t, []byte("[]"))
}

// StatusUpdate is the body of a status change.
type StatusUpdate struct {
	Status       string          `json:"status"`
	ResponseData json.RawMessage `json:"response_data,omitempty"`
}
