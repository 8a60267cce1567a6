package errdetail

import "fmt"

// Decode error codes
const (
	// CodeBase64Invalid means the input was not valid base64.
	CodeBase64Invalid = "base64_invalid"
	// CodePayloadInvalid means the bytes were not a valid BadRequest message.
	CodePayloadInvalid = "payload_invalid"
)

// maxInputContext bounds how much of the offending input a DecodeError
// repeats in its message.
const maxInputContext = 64

// DecodeError is returned when a detail payload cannot be decoded.
type DecodeError struct {
	Code string
	// Input is the offending input, as given or re-encoded as base64.
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	input := e.Input
	if len(input) > maxInputContext {
		input = input[:maxInputContext] + "..."
	}
	return fmt.Sprintf("failed to decode BadRequest (%s) from %q: %v", e.Code, input, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
