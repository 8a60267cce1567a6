package userapi

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/inngest/rpcvalidate/pkg/logger"
	"github.com/inngest/rpcvalidate/pkg/validation"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// errValidationFailed is what callers see when the evaluator itself fails.
// The underlying cause is logged, not returned.
var errValidationFailed = errors.New("request validation failed")

// NewValidationUnaryInterceptor validates every proto request before it
// reaches the handler.  Rule violations are returned as InvalidArgument with
// a google.rpc.BadRequest detail; evaluator failures become Internal.
func NewValidationUnaryInterceptor(v *validation.Validator, l logger.Logger) grpc.UnaryServerInterceptor {
	if l == nil {
		l = logger.VoidLogger()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		protoReq, ok := req.(proto.Message)
		if !ok {
			return handler(ctx, req)
		}

		verr, err := checkRequest(ctx, v, l, info.FullMethod, protoReq)
		switch {
		case verr != nil:
			return nil, verr.GRPCStatus().Err()
		case err != nil:
			return nil, status.Error(codes.Internal, errValidationFailed.Error())
		}
		return handler(ctx, req)
	}
}

// NewValidationConnectInterceptor is the Connect counterpart of
// NewValidationUnaryInterceptor.  Violations are returned as
// invalid_argument errors carrying a google.rpc.BadRequest detail.
func NewValidationConnectInterceptor(v *validation.Validator, l logger.Logger) connect.Interceptor {
	if l == nil {
		l = logger.VoidLogger()
	}

	return connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			protoReq, ok := req.Any().(proto.Message)
			if req.Spec().IsClient || !ok {
				return next(ctx, req)
			}

			verr, err := checkRequest(ctx, v, l, req.Spec().Procedure, protoReq)
			switch {
			case verr != nil:
				return nil, verr.ConnectError()
			case err != nil:
				return nil, connect.NewError(connect.CodeInternal, errValidationFailed)
			}
			return next(ctx, req)
		}
	})
}

// checkRequest validates msg.  Rule violations are returned as a
// ValidationError.  Any other failure is logged and returned as err.
func checkRequest(ctx context.Context, v *validation.Validator, l logger.Logger, method string, msg proto.Message) (*validation.ValidationError, error) {
	err := v.ValidateMessage(msg)
	if err == nil {
		return nil, nil
	}

	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		l.DebugContext(ctx, "rejected invalid request",
			"method", method,
			"violations", len(verr.Violations()),
		)
		return verr, nil
	}

	l.ErrorContext(ctx, "error validating request",
		"method", method,
		"error", err,
	)
	return nil, err
}
