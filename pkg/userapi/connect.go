package userapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/inngest/rpcvalidate/pkg/userv1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// NewConnectHandler serves UserService over the Connect, gRPC-Web and gRPC
// protocols.  Requests pass through the same validation as NewServer.
func NewConnectHandler(opts ServerOpts) (http.Handler, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	method := createUserMethod()
	svc := opts.Service
	createUser := func(ctx context.Context, req *connect.Request[dynamicpb.Message]) (*connect.Response[dynamicpb.Message], error) {
		out, err := svc.CreateUser(ctx, req.Msg)
		if err != nil {
			return nil, toConnectError(err)
		}
		msg, ok := out.(*dynamicpb.Message)
		if !ok {
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("unexpected response type %T", out))
		}
		return connect.NewResponse(msg), nil
	}

	mux := http.NewServeMux()
	mux.Handle(userv1.CreateUserProcedure, connect.NewUnaryHandler(
		userv1.CreateUserProcedure,
		createUser,
		connect.WithSchema(method),
		connect.WithRequestInitializer(initDynamicMessage),
		connect.WithInterceptors(NewValidationConnectInterceptor(opts.Validator, opts.Logger)),
	))
	return mux, nil
}

func createUserMethod() protoreflect.MethodDescriptor {
	return userv1.Service().Methods().ByName("CreateUser")
}

// initDynamicMessage resets msg to an empty message of the method's input
// type on the handler side and its output type on the client side.
func initDynamicMessage(spec connect.Spec, msg any) error {
	dyn, ok := msg.(*dynamicpb.Message)
	if !ok {
		return nil
	}
	desc, ok := spec.Schema.(protoreflect.MethodDescriptor)
	if !ok {
		return fmt.Errorf("invalid schema type %T for %T message", spec.Schema, dyn)
	}
	if spec.IsClient {
		*dyn = *dynamicpb.NewMessage(desc.Output())
	} else {
		*dyn = *dynamicpb.NewMessage(desc.Input())
	}
	return nil
}

// toConnectError converts gRPC status errors returned by a UserServiceServer
// into Connect errors, keeping their code and details.
func toConnectError(err error) error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	cerr = connect.NewError(connect.Code(st.Code()), errors.New(st.Message()))
	for _, a := range st.Proto().GetDetails() {
		if detail, derr := connect.NewErrorDetail(a); derr == nil {
			cerr.AddDetail(detail)
		}
	}
	return cerr
}
