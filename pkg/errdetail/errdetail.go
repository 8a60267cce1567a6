// Package errdetail reads structured error details back out of errors
// received over an RPC boundary.  It understands Connect errors and gRPC
// status errors, and decodes google.rpc.BadRequest field violations.
//
// Decoding is best-effort per detail: details of unknown types are ignored
// and details that fail to decode are skipped, so that one odd entry never
// hides the rest of a multi-violation error.
package errdetail

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// UnknownType is reported for details that carry no type identifier.
const UnknownType = "unknown"

// BadRequestType is the fully-qualified type name of google.rpc.BadRequest.
var BadRequestType = string((&errdetails.BadRequest{}).ProtoReflect().Descriptor().FullName())

// ErrorDetail is a single detail attached to an RPC error.
type ErrorDetail struct {
	// Type is the detail's fully-qualified message name, eg.
	// "google.rpc.BadRequest", or UnknownType.
	Type string `json:"type"`
	// Value is the binary payload in standard, padded base64.
	Value string `json:"value"`
	// Debug is the protojson rendering of the payload, when its type is
	// known locally.
	Debug any `json:"debug,omitempty"`
}

// detail is the raw form of an error detail, independent of the transport
// it arrived on.
type detail struct {
	typ   string
	raw   []byte
	value func() (proto.Message, error)
}

func (d detail) debug() any {
	if d.value == nil {
		return nil
	}
	msg, err := d.value()
	if err != nil || msg == nil {
		return nil
	}
	byt, err := protojson.Marshal(msg)
	if err != nil {
		return nil
	}
	return json.RawMessage(byt)
}

// details lists the details attached to err, in order.  Connect errors are
// looked for first, then anything gRPC's status package understands.
func details(err error) []detail {
	if err == nil {
		return nil
	}

	var cerr *connect.Error
	if errors.As(err, &cerr) {
		out := make([]detail, 0, len(cerr.Details()))
		for _, d := range cerr.Details() {
			out = append(out, detail{typ: d.Type(), raw: d.Bytes(), value: d.Value})
		}
		return out
	}

	st, ok := status.FromError(err)
	if !ok {
		return nil
	}

	anys := st.Proto().GetDetails()
	out := make([]detail, 0, len(anys))
	for _, a := range anys {
		if a == nil {
			out = append(out, detail{})
			continue
		}
		out = append(out, detail{typ: string(a.MessageName()), raw: a.GetValue(), value: a.UnmarshalNew})
	}
	return out
}

// ExtractErrorDetails lists every detail on err with its payload re-encoded
// as base64.  Details without a type identifier are reported with
// UnknownType and an empty value.  A nil error, or one without details,
// yields an empty list.
func ExtractErrorDetails(err error) []ErrorDetail {
	ds := details(err)
	out := make([]ErrorDetail, 0, len(ds))
	for _, d := range ds {
		if d.typ == "" {
			out = append(out, ErrorDetail{Type: UnknownType, Value: ""})
			continue
		}
		out = append(out, ErrorDetail{
			Type:  d.typ,
			Value: base64.StdEncoding.EncodeToString(d.raw),
			Debug: d.debug(),
		})
	}
	return out
}
