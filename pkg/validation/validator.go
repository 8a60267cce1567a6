// Package validation runs protovalidate rules against request messages and
// shapes failures into a ValidationError: an ordered list of field
// violations with machine-readable reason codes, ready to travel as a
// google.rpc.BadRequest error detail.
package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/inngest/rpcvalidate/pkg/logger"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ErrNoViolations is returned when an evaluator reports a message as invalid
// without saying why.
var ErrNoViolations = errors.New("evaluator reported invalid message without violations")

// Validator validates messages with an Evaluator.  It holds no per-call state
// and is safe for concurrent use.
type Validator struct {
	eval Evaluator
	log  logger.Logger
}

type Opt func(v *Validator)

// WithEvaluator replaces the default protovalidate evaluator.
func WithEvaluator(e Evaluator) Opt {
	return func(v *Validator) {
		v.eval = e
	}
}

func WithLogger(l logger.Logger) Opt {
	return func(v *Validator) {
		v.log = l
	}
}

// New creates a Validator.  Without WithEvaluator it uses protovalidate,
// accumulating every violation rather than stopping at the first.
func New(opts ...Opt) (*Validator, error) {
	v := &Validator{}
	for _, apply := range opts {
		apply(v)
	}

	if v.log == nil {
		v.log = logger.New()
	}

	if v.eval == nil {
		eval, err := NewProtovalidateEvaluator()
		if err != nil {
			return nil, err
		}
		v.eval = eval
	}

	return v, nil
}

// Validate checks msg against the rules declared by schema.  It returns nil
// when the message is valid and a *ValidationError when rules are violated.
// Any evaluator failure is returned as is.
func (v *Validator) Validate(schema protoreflect.MessageDescriptor, msg proto.Message) error {
	res := v.eval.Evaluate(schema, msg)

	switch res.Outcome {
	case OutcomeValid:
		return nil

	case OutcomeInvalid:
		if len(res.Violations) == 0 {
			return ErrNoViolations
		}
		violations := make([]Violation, len(res.Violations))
		for i, rv := range res.Violations {
			violations[i] = toViolation(rv)
		}
		v.log.Trace("message failed validation", "schema", schemaName(schema, msg), "violations", len(violations))
		return NewValidationError(violations...)

	case OutcomeError:
		if res.Err == nil {
			return fmt.Errorf("evaluator failed without an error for %s", schemaName(schema, msg))
		}
		return res.Err

	default:
		return fmt.Errorf("unknown evaluator outcome: %s", res.Outcome)
	}
}

// ValidateMessage validates msg against its own descriptor.
func (v *Validator) ValidateMessage(msg proto.Message) error {
	if msg == nil {
		return v.Validate(nil, nil)
	}
	return v.Validate(msg.ProtoReflect().Descriptor(), msg)
}

func toViolation(rv RuleViolation) Violation {
	msg := rv.Message
	if msg == "" {
		msg = DefaultMessage
	}
	return Violation{
		FieldPath: rv.FieldPath,
		Message:   msg,
		RuleID:    rv.RuleID,
	}
}

func schemaName(schema protoreflect.MessageDescriptor, msg proto.Message) protoreflect.FullName {
	if schema != nil {
		return schema.FullName()
	}
	if msg != nil {
		return msg.ProtoReflect().Descriptor().FullName()
	}
	return ""
}

var (
	defaultValidator     *Validator
	defaultValidatorErr  error
	defaultValidatorOnce sync.Once
)

// Default returns the process-wide Validator, creating it on first use.
func Default() (*Validator, error) {
	defaultValidatorOnce.Do(func() {
		defaultValidator, defaultValidatorErr = New()
	})
	return defaultValidator, defaultValidatorErr
}
