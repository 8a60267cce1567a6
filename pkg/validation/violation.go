package validation

import (
	"encoding/json"
	"strings"

	"connectrpc.com/connect"
	"github.com/inngest/rpcvalidate/pkg/reason"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ErrorPrefix starts every ValidationError message.
	ErrorPrefix = "validation error"

	// DefaultMessage is used for violations reported without a message.
	DefaultMessage = "validation failed"
)

// Violation is a single field-level rule failure.
type Violation struct {
	// FieldPath is the offending field, dot-separated for nested fields.  It
	// is empty for message-level rules.
	FieldPath string
	// Message describes the failure for humans.
	Message string
	// RuleID is the evaluator's rule identifier, eg. "string.min_len".
	RuleID string
}

// ReasonCode is the UPPER_SNAKE_CASE form of the rule id.
func (v Violation) ReasonCode() string {
	return reason.ToReasonCode(v.RuleID)
}

func (v Violation) String() string {
	if v.FieldPath == "" {
		return v.Message
	}
	return v.FieldPath + ": " + v.Message
}

type violationJSON struct {
	FieldPath  string `json:"field_path"`
	Message    string `json:"message"`
	RuleID     string `json:"rule_id"`
	ReasonCode string `json:"reason_code"`
}

func (v Violation) MarshalJSON() ([]byte, error) {
	return json.Marshal(violationJSON{
		FieldPath:  v.FieldPath,
		Message:    v.Message,
		RuleID:     v.RuleID,
		ReasonCode: v.ReasonCode(),
	})
}

// ValidationError is returned when a message breaks one or more of its
// rules.  It holds every violation in the order the evaluator reported them.
type ValidationError struct {
	violations []Violation
	msg        string
}

// NewValidationError aggregates violations into a single error.  The
// violations must not be empty.
func NewValidationError(violations ...Violation) *ValidationError {
	vs := make([]Violation, len(violations))
	copy(vs, violations)

	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}

	return &ValidationError{
		violations: vs,
		msg:        ErrorPrefix + ": " + strings.Join(parts, ", "),
	}
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Violations returns a copy of the violations.
func (e *ValidationError) Violations() []Violation {
	out := make([]Violation, len(e.violations))
	copy(out, e.violations)
	return out
}

// BadRequest renders the violations as a google.rpc.BadRequest detail.
func (e *ValidationError) BadRequest() *errdetails.BadRequest {
	br := &errdetails.BadRequest{
		FieldViolations: make([]*errdetails.BadRequest_FieldViolation, 0, len(e.violations)),
	}
	for _, v := range e.violations {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.FieldPath,
			Description: v.Message,
			Reason:      v.ReasonCode(),
		})
	}
	return br
}

// GRPCStatus returns an InvalidArgument status carrying the BadRequest
// detail.  gRPC uses this when a *ValidationError is returned from a handler.
func (e *ValidationError) GRPCStatus() *status.Status {
	st := status.New(codes.InvalidArgument, e.msg)
	if withDetails, err := st.WithDetails(e.BadRequest()); err == nil {
		return withDetails
	}
	return st
}

// ConnectError returns an InvalidArgument Connect error carrying the
// BadRequest detail.
func (e *ValidationError) ConnectError() *connect.Error {
	cerr := connect.NewError(connect.CodeInvalidArgument, e)
	if detail, err := connect.NewErrorDetail(e.BadRequest()); err == nil {
		cerr.AddDetail(detail)
	}
	return cerr
}
