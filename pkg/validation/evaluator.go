package validation

import (
	"errors"
	"fmt"

	"buf.build/go/protovalidate"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var (
	// ErrSchemaMismatch is returned when a message is evaluated against a
	// schema other than its own.
	ErrSchemaMismatch = errors.New("message does not match schema")
	// ErrNilMessage is returned when asked to evaluate a nil message.
	ErrNilMessage = errors.New("nil message")
)

// Outcome is the result kind of a single evaluation.
type Outcome int

const (
	// OutcomeValid means every rule passed.
	OutcomeValid Outcome = iota
	// OutcomeInvalid means one or more rules were violated.
	OutcomeInvalid
	// OutcomeError means the evaluator could not finish, eg. because of a
	// broken rule definition.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// RuleViolation is a violation as reported by an evaluator.
type RuleViolation struct {
	FieldPath string
	Message   string
	RuleID    string
}

// Result is what an Evaluator returns.  Violations is set for OutcomeInvalid
// and Err for OutcomeError.
type Result struct {
	Outcome    Outcome
	Violations []RuleViolation
	Err        error
}

// Valid reports a message that satisfies every rule.
func Valid() Result {
	return Result{Outcome: OutcomeValid}
}

// Invalid reports the rules a message breaks, in evaluation order.
func Invalid(violations ...RuleViolation) Result {
	return Result{Outcome: OutcomeInvalid, Violations: violations}
}

// Fault reports that evaluation itself failed.
func Fault(err error) Result {
	return Result{Outcome: OutcomeError, Err: err}
}

// Evaluator checks a message against the rules its schema declares.
// Implementations must be safe for concurrent use.
type Evaluator interface {
	Evaluate(schema protoreflect.MessageDescriptor, msg proto.Message) Result
}

// ProtovalidateEvaluator evaluates buf.validate rules with protovalidate.
type ProtovalidateEvaluator struct {
	v protovalidate.Validator
}

// NewProtovalidateEvaluator creates an evaluator backed by a new
// protovalidate.Validator built with opts.
func NewProtovalidateEvaluator(opts ...protovalidate.ValidatorOption) (*ProtovalidateEvaluator, error) {
	v, err := protovalidate.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}
	return &ProtovalidateEvaluator{v: v}, nil
}

// Evaluate validates msg.  A nil schema means the message's own descriptor.
func (p *ProtovalidateEvaluator) Evaluate(schema protoreflect.MessageDescriptor, msg proto.Message) Result {
	if msg == nil {
		return Fault(ErrNilMessage)
	}
	if schema != nil {
		if got := msg.ProtoReflect().Descriptor().FullName(); got != schema.FullName() {
			return Fault(fmt.Errorf("%w: got %s, want %s", ErrSchemaMismatch, got, schema.FullName()))
		}
	}

	err := p.v.Validate(msg)
	if err == nil {
		return Valid()
	}

	verr := &protovalidate.ValidationError{}
	if !errors.As(err, &verr) {
		return Fault(err)
	}

	violations := make([]RuleViolation, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		if v == nil || v.Proto == nil {
			continue
		}
		violations = append(violations, RuleViolation{
			FieldPath: protovalidate.FieldPathString(v.Proto.GetField()),
			Message:   v.Proto.GetMessage(),
			RuleID:    v.Proto.GetRuleId(),
		})
	}
	return Invalid(violations...)
}
