package fhir

import "fmt"

// OperationOutcome severity levels per FHIR R4 spec.
const (
	IssueSeverityFatal       = "fatal"
	IssueSeverityError       = "error"
	IssueSeverityWarning     = "warning"
	IssueSeverityInformation = "information"
)

// OperationOutcome issue type codes used by this server.
const (
	IssueTypeInvalid      = "invalid"
	IssueTypeRequired     = "required"
	IssueTypeValue        = "value"
	IssueTypeNotFound     = "not-found"
	IssueTypeProcessing   = "processing"
	IssueTypeThrottled    = "throttled"
	IssueTypeNotSupported = "not-supported"
	IssueTypeCodeInvalid  = "code-invalid"
	IssueTypeIncomplete   = "incomplete"
)

// OperationOutcome represents a FHIR OperationOutcome for errors.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string           `json:"severity"`
	Code        string           `json:"code"`
	Details     *CodeableConcept `json:"details,omitempty"`
	Diagnostics string           `json:"diagnostics,omitempty"`
	Expression  []string         `json:"expression,omitempty"`
}

func NewOperationOutcome(severity, code, diagnostics string) *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue: []OperationOutcomeIssue{
			{
				Severity:    severity,
				Code:        code,
				Diagnostics: diagnostics,
			},
		},
	}
}

// AddIssue appends an issue and returns the outcome for chaining.
func (o *OperationOutcome) AddIssue(severity, code, diagnostics string) *OperationOutcome {
	o.Issue = append(o.Issue, OperationOutcomeIssue{
		Severity:    severity,
		Code:        code,
		Diagnostics: diagnostics,
	})
	return o
}

func ErrorOutcome(diagnostics string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityError, IssueTypeProcessing, diagnostics)
}

func NotFoundOutcome(resourceType, id string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityError, IssueTypeNotFound, resourceType+"/"+id+" not found")
}

// ValidationOutcome reports an invalid field, with the field path as expression.
func ValidationOutcome(field, message string) *OperationOutcome {
	oo := NewOperationOutcome(IssueSeverityError, IssueTypeInvalid, message)
	if field != "" {
		oo.Issue[0].Expression = []string{field}
	}
	return oo
}

// CodeInvalidOutcome reports a value outside a fixed vocabulary.
func CodeInvalidOutcome(field, value string) *OperationOutcome {
	oo := NewOperationOutcome(IssueSeverityError, IssueTypeCodeInvalid,
		fmt.Sprintf("unknown %s value %q", field, value))
	oo.Issue[0].Expression = []string{field}
	return oo
}

// WarningOutcome creates a warning OperationOutcome.
// Use this when an operation succeeded but produced non-fatal warnings that
// the client should be aware of.
func WarningOutcome(message string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityWarning, IssueTypeIncomplete, message)
}

// ThrottleOutcome creates a 429-style OperationOutcome indicating the server is
// rate-limiting the client.
func ThrottleOutcome() *OperationOutcome {
	return NewOperationOutcome(
		IssueSeverityError,
		IssueTypeThrottled,
		"Rate limit exceeded. Please retry after a delay.",
	)
}
