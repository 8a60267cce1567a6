package errdetail

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/inngest/rpcvalidate/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

const (
	passwordMismatchPayload = "CikSFHBhc3N3b3JkcyBtdXN0IG1hdGNoGhFQQVNTV09SRF9NSVNNQVRDSA=="
	multiFieldPayload       = "CkIKBG5hbWUSKnZhbHVlIGxlbmd0aCBtdXN0IGJlIGF0IGxlYXN0IDEgY2hhcmFjdGVycxoOU1RSSU5HX01JTl9MRU4KOgoFZW1haWwSI3ZhbHVlIG11c3QgYmUgYSB2YWxpZCBlbWFpbCBhZGRyZXNzGgxTVFJJTkdfRU1BSUwKRgoIcGFzc3dvcmQSKnZhbHVlIGxlbmd0aCBtdXN0IGJlIGF0IGxlYXN0IDggY2hhcmFjdGVycxoOU1RSSU5HX01JTl9MRU4="
)

var multiFieldViolations = []FieldViolation{
	{Field: "name", Description: "value length must be at least 1 characters", Reason: "STRING_MIN_LEN"},
	{Field: "email", Description: "value must be a valid email address", Reason: "STRING_EMAIL"},
	{Field: "password", Description: "value length must be at least 8 characters", Reason: "STRING_MIN_LEN"},
}

func statusErr(t *testing.T, details ...*anypb.Any) error {
	t.Helper()
	return status.FromProto(&spb.Status{
		Code:    int32(codes.InvalidArgument),
		Message: "invalid",
		Details: details,
	}).Err()
}

func mustAny(t *testing.T, m proto.Message) *anypb.Any {
	t.Helper()
	a, err := anypb.New(m)
	require.NoError(t, err)
	return a
}

func badRequest(fvs ...*errdetails.BadRequest_FieldViolation) *errdetails.BadRequest {
	return &errdetails.BadRequest{FieldViolations: fvs}
}

func TestDecodeBadRequest(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []FieldViolation
	}{
		{
			name:  "password mismatch",
			input: passwordMismatchPayload,
			expected: []FieldViolation{
				{Field: "", Description: "passwords must match", Reason: "PASSWORD_MISMATCH"},
			},
		},
		{
			name:     "multiple fields",
			input:    multiFieldPayload,
			expected: multiFieldViolations,
		},
		{
			name:  "unpadded",
			input: "CikSFHBhc3N3b3JkcyBtdXN0IG1hdGNoGhFQQVNTV09SRF9NSVNNQVRDSA",
			expected: []FieldViolation{
				{Field: "", Description: "passwords must match", Reason: "PASSWORD_MISMATCH"},
			},
		},
		{
			name:     "empty payload",
			input:    "",
			expected: []FieldViolation{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			br, err := DecodeBadRequest(test.input)
			require.NoError(t, err)
			require.NotNil(t, br.FieldViolations)
			require.Equal(t, test.expected, br.FieldViolations)
			for _, fv := range br.FieldViolations {
				require.True(t, fv.HasValidReason(), fv.Reason)
			}
		})
	}
}

func TestDecodeBadRequestErrors(t *testing.T) {
	t.Run("not base64", func(t *testing.T) {
		_, err := DecodeBadRequest("not base64!!")
		require.Error(t, err)

		var derr *DecodeError
		require.ErrorAs(t, err, &derr)
		require.Equal(t, CodeBase64Invalid, derr.Code)
		require.Equal(t, "not base64!!", derr.Input)
		require.Contains(t, err.Error(), CodeBase64Invalid)
		require.NotNil(t, errors.Unwrap(err))
	})

	t.Run("malformed padding", func(t *testing.T) {
		for _, input := range []string{"=", "====", "QQ=====", "QQ=", "Q===", "QQ==QQ=="} {
			_, err := DecodeBadRequest(input)

			var derr *DecodeError
			require.ErrorAs(t, err, &derr, input)
			require.Equal(t, CodeBase64Invalid, derr.Code, input)
		}
	})

	t.Run("not a BadRequest", func(t *testing.T) {
		input := base64.StdEncoding.EncodeToString([]byte{0xff})
		_, err := DecodeBadRequest(input)

		var derr *DecodeError
		require.ErrorAs(t, err, &derr)
		require.Equal(t, CodePayloadInvalid, derr.Code)
		require.Equal(t, input, derr.Input)
	})

	t.Run("long input is truncated in the message", func(t *testing.T) {
		input := ""
		for i := 0; i < 10; i++ {
			input += "!!!!!!!!!!!!!!!!"
		}
		_, err := DecodeBadRequest(input)
		require.Error(t, err)
		require.NotContains(t, err.Error(), input)
		require.Contains(t, err.Error(), "...")
	})
}

func TestEncodeBadRequest(t *testing.T) {
	b64, err := EncodeBadRequest(multiFieldViolations...)
	require.NoError(t, err)
	require.Equal(t, multiFieldPayload, b64)

	b64, err = EncodeBadRequest()
	require.NoError(t, err)
	br, err := DecodeBadRequest(b64)
	require.NoError(t, err)
	require.Empty(t, br.FieldViolations)
}

func TestFieldViolationHasValidReason(t *testing.T) {
	assert.True(t, FieldViolation{Reason: "STRING_MIN_LEN"}.HasValidReason())
	assert.False(t, FieldViolation{}.HasValidReason())
	assert.False(t, FieldViolation{Reason: "string.min_len"}.HasValidReason())
}

func TestExtractFieldViolations(t *testing.T) {
	t.Run("nil and plain errors", func(t *testing.T) {
		require.Empty(t, ExtractFieldViolations(nil))
		require.Empty(t, ExtractFieldViolations(errors.New("boom")))
	})

	t.Run("status without details", func(t *testing.T) {
		require.Empty(t, ExtractFieldViolations(status.Error(codes.InvalidArgument, "bad")))
	})

	t.Run("reason is left empty when unset", func(t *testing.T) {
		err := statusErr(t, mustAny(t, badRequest(
			&errdetails.BadRequest_FieldViolation{Field: "name", Description: "required"},
		)))

		fvs := ExtractFieldViolations(err)
		require.Equal(t, []FieldViolation{{Field: "name", Description: "required"}}, fvs)
		require.False(t, fvs[0].HasValidReason())
	})

	t.Run("unknown detail types are ignored", func(t *testing.T) {
		err := statusErr(t,
			mustAny(t, &errdetails.ErrorInfo{Reason: "QUOTA", Domain: "example.com"}),
			mustAny(t, badRequest(
				&errdetails.BadRequest_FieldViolation{Field: "email", Description: "bad", Reason: "STRING_EMAIL"},
			)),
			mustAny(t, &errdetails.RetryInfo{}),
		)

		require.Equal(t, []FieldViolation{
			{Field: "email", Description: "bad", Reason: "STRING_EMAIL"},
		}, ExtractFieldViolations(err))
	})

	t.Run("entries from several details keep their order", func(t *testing.T) {
		err := statusErr(t,
			mustAny(t, badRequest(&errdetails.BadRequest_FieldViolation{Field: "a", Description: "1", Reason: "A1"})),
			mustAny(t, badRequest(
				&errdetails.BadRequest_FieldViolation{Field: "b", Description: "2", Reason: "B2"},
				&errdetails.BadRequest_FieldViolation{Field: "c", Description: "3", Reason: "C3"},
			)),
		)

		fvs := ExtractFieldViolations(err)
		require.Len(t, fvs, 3)
		require.Equal(t, "a", fvs[0].Field)
		require.Equal(t, "b", fvs[1].Field)
		require.Equal(t, "c", fvs[2].Field)
	})

	t.Run("wrapped status errors", func(t *testing.T) {
		err := statusErr(t, mustAny(t, badRequest(
			&errdetails.BadRequest_FieldViolation{Field: "name", Description: "required", Reason: "REQUIRED"},
		)))
		wrapped := fmt.Errorf("calling CreateUser: %w", err)

		require.Len(t, ExtractFieldViolations(wrapped), 1)
	})
}

func TestInspect(t *testing.T) {
	malformed := &anypb.Any{
		TypeUrl: "type.googleapis.com/" + BadRequestType,
		Value:   []byte{0xff},
	}
	err := statusErr(t,
		malformed,
		mustAny(t, badRequest(
			&errdetails.BadRequest_FieldViolation{Field: "name", Description: "required", Reason: "REQUIRED"},
		)),
	)

	fvs, skipped := Inspect(err)
	require.Equal(t, []FieldViolation{{Field: "name", Description: "required", Reason: "REQUIRED"}}, fvs)
	require.Error(t, skipped)

	var derr *DecodeError
	require.ErrorAs(t, skipped, &derr)
	require.Equal(t, CodePayloadInvalid, derr.Code)
	require.Contains(t, skipped.Error(), "detail 0")

	// The skipped entry is silently dropped here.
	require.Equal(t, fvs, ExtractFieldViolations(err))

	fvs, skipped = Inspect(statusErr(t, mustAny(t, badRequest())))
	require.NoError(t, skipped)
	require.NotNil(t, fvs)
	require.Empty(t, fvs)
}

func TestExtractErrorDetails(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		require.Empty(t, ExtractErrorDetails(nil))
	})

	t.Run("mixed details", func(t *testing.T) {
		br := badRequest(&errdetails.BadRequest_FieldViolation{Field: "name", Description: "required", Reason: "REQUIRED"})
		raw, err := proto.Marshal(br)
		require.NoError(t, err)

		custom := &anypb.Any{TypeUrl: "type.googleapis.com/acme.v1.Custom", Value: []byte("custom")}
		untyped := &anypb.Any{Value: []byte("ignored")}

		got := ExtractErrorDetails(statusErr(t, mustAny(t, br), custom, untyped))
		require.Len(t, got, 3)

		require.Equal(t, BadRequestType, got[0].Type)
		require.Equal(t, base64.StdEncoding.EncodeToString(raw), got[0].Value)
		require.NotNil(t, got[0].Debug)
		debug, ok := got[0].Debug.(json.RawMessage)
		require.True(t, ok)
		require.JSONEq(t, `{"fieldViolations":[{"field":"name","description":"required","reason":"REQUIRED"}]}`, string(debug))

		require.Equal(t, "acme.v1.Custom", got[1].Type)
		require.Equal(t, base64.StdEncoding.EncodeToString([]byte("custom")), got[1].Value)
		require.Nil(t, got[1].Debug)

		require.Equal(t, ErrorDetail{Type: UnknownType, Value: ""}, got[2])
	})

	t.Run("json omits empty debug", func(t *testing.T) {
		byt, err := json.Marshal(ErrorDetail{Type: UnknownType})
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"unknown","value":""}`, string(byt))
	})
}

func TestValidationErrorSources(t *testing.T) {
	verr := validation.NewValidationError(
		validation.Violation{FieldPath: "name", Message: "value length must be at least 1 characters", RuleID: "string.min_len"},
		validation.Violation{FieldPath: "email", Message: "value must be a valid email address", RuleID: "string.email"},
		validation.Violation{FieldPath: "password", Message: "value length must be at least 8 characters", RuleID: "string.min_len"},
	)

	tests := []struct {
		name string
		err  error
	}{
		{name: "validation error", err: verr},
		{name: "grpc status", err: verr.GRPCStatus().Err()},
		{name: "wrapped grpc status", err: fmt.Errorf("rpc: %w", verr.GRPCStatus().Err())},
		{name: "connect error", err: verr.ConnectError()},
		{name: "wrapped connect error", err: fmt.Errorf("rpc: %w", verr.ConnectError())},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fvs, skipped := Inspect(test.err)
			require.NoError(t, skipped)
			require.Equal(t, multiFieldViolations, fvs)

			details := ExtractErrorDetails(test.err)
			require.Len(t, details, 1)
			require.Equal(t, BadRequestType, details[0].Type)

			br, err := DecodeBadRequest(details[0].Value)
			require.NoError(t, err)
			require.Equal(t, multiFieldViolations, br.FieldViolations)
		})
	}
}

func TestConnectErrorDetails(t *testing.T) {
	cerr := connect.NewError(connect.CodeInvalidArgument, errors.New("invalid"))

	info, err := connect.NewErrorDetail(&errdetails.ErrorInfo{Reason: "QUOTA"})
	require.NoError(t, err)
	cerr.AddDetail(info)

	br, err := connect.NewErrorDetail(badRequest(
		&errdetails.BadRequest_FieldViolation{Field: "email", Description: "bad", Reason: "STRING_EMAIL"},
	))
	require.NoError(t, err)
	cerr.AddDetail(br)

	require.Equal(t, []FieldViolation{{Field: "email", Description: "bad", Reason: "STRING_EMAIL"}}, ExtractFieldViolations(cerr))

	details := ExtractErrorDetails(cerr)
	require.Len(t, details, 2)
	require.Equal(t, "google.rpc.ErrorInfo", details[0].Type)
	require.Equal(t, BadRequestType, details[1].Type)
}
