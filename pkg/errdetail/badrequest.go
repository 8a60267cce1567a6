package errdetail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/inngest/rpcvalidate/pkg/reason"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/proto"
)

// FieldViolation is a google.rpc.BadRequest field violation decoded from the
// wire.
type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
	// Reason is empty when the sender did not set one.
	Reason string `json:"reason,omitempty"`
}

// HasValidReason reports whether Reason is a well-formed reason code.
func (f FieldViolation) HasValidReason() bool {
	return reason.IsValid(f.Reason)
}

// BadRequest is a decoded google.rpc.BadRequest.
type BadRequest struct {
	FieldViolations []FieldViolation `json:"fieldViolations"`
}

// ExtractFieldViolations decodes the field violations of every BadRequest
// detail on err, in order.  Details of other types are ignored and details
// that cannot be decoded are skipped.
func ExtractFieldViolations(err error) []FieldViolation {
	fvs, _ := Inspect(err)
	return fvs
}

// Inspect is ExtractFieldViolations, also returning why any BadRequest
// details were skipped.  The violations are valid even when the error is
// non-nil.
func Inspect(err error) ([]FieldViolation, error) {
	var skipped *multierror.Error

	out := []FieldViolation{}
	for i, d := range details(err) {
		if d.typ != BadRequestType {
			continue
		}

		br, derr := unmarshalBadRequest(d.raw)
		if derr != nil {
			skipped = multierror.Append(skipped, fmt.Errorf("detail %d: %w", i, derr))
			continue
		}
		out = append(out, br.FieldViolations...)
	}

	return out, skipped.ErrorOrNil()
}

// DecodeBadRequest decodes a base64-encoded google.rpc.BadRequest, eg. the
// value of a detail in a Connect JSON error body.  Padding is optional, but
// padded input must be padded correctly.  A validly encoded empty payload
// yields no violations and no error.
func DecodeBadRequest(b64 string) (*BadRequest, error) {
	enc := base64.RawStdEncoding
	if strings.Contains(b64, "=") {
		enc = base64.StdEncoding
	}

	raw, err := enc.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, &DecodeError{Code: CodeBase64Invalid, Input: b64, Err: err}
	}

	br, derr := unmarshalBadRequest(raw)
	if derr != nil {
		derr.Input = b64
		return nil, derr
	}
	return br, nil
}

// EncodeBadRequest is the inverse of DecodeBadRequest.
func EncodeBadRequest(fvs ...FieldViolation) (string, error) {
	br := &errdetails.BadRequest{}
	for _, fv := range fvs {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       fv.Field,
			Description: fv.Description,
			Reason:      fv.Reason,
		})
	}

	byt, err := proto.MarshalOptions{Deterministic: true}.Marshal(br)
	if err != nil {
		return "", fmt.Errorf("error marshalling BadRequest: %w", err)
	}
	return base64.StdEncoding.EncodeToString(byt), nil
}

func unmarshalBadRequest(raw []byte) (*BadRequest, *DecodeError) {
	pb := &errdetails.BadRequest{}
	if err := proto.Unmarshal(raw, pb); err != nil {
		return nil, &DecodeError{
			Code:  CodePayloadInvalid,
			Input: base64.StdEncoding.EncodeToString(raw),
			Err:   err,
		}
	}

	br := &BadRequest{
		FieldViolations: make([]FieldViolation, 0, len(pb.GetFieldViolations())),
	}
	for _, fv := range pb.GetFieldViolations() {
		br.FieldViolations = append(br.FieldViolations, FieldViolation{
			Field:       fv.GetField(),
			Description: fv.GetDescription(),
			Reason:      fv.GetReason(),
		})
	}
	return br, nil
}
