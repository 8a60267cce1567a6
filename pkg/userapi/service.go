// Package userapi serves user.v1.UserService over gRPC and Connect.  Requests are
// validated by an interceptor before they reach the service, so handlers
// only ever see messages that satisfy their rules.
package userapi

import (
	"context"

	"github.com/google/uuid"
	"github.com/inngest/rpcvalidate/pkg/logger"
	"github.com/inngest/rpcvalidate/pkg/userv1"
	"github.com/jonboulle/clockwork"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"
)

// UserServiceServer is the server API for user.v1.UserService.  Messages
// are dynamic, built from the user.v1 descriptors.
type UserServiceServer interface {
	CreateUser(ctx context.Context, req proto.Message) (proto.Message, error)
}

// Service is the in-memory UserService.  It does not persist users.
type Service struct {
	clock clockwork.Clock
	newID func() string
	log   logger.Logger
}

type ServiceOpt func(s *Service)

// WithClock sets the time source for created_at and updated_at.
func WithClock(c clockwork.Clock) ServiceOpt {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator sets the user id source.
func WithIDGenerator(f func() string) ServiceOpt {
	return func(s *Service) {
		s.newID = f
	}
}

func WithServiceLogger(l logger.Logger) ServiceOpt {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(opts ...ServiceOpt) *Service {
	s := &Service{
		clock: clockwork.NewRealClock(),
		newID: func() string { return uuid.NewString() },
	}
	for _, apply := range opts {
		apply(s)
	}
	if s.log == nil {
		s.log = logger.VoidLogger()
	}
	return s
}

// CreateUser returns the user described by req.  Validation has already
// happened by the time this runs.
func (s *Service) CreateUser(ctx context.Context, req proto.Message) (proto.Message, error) {
	in, err := userv1.CreateUserRequestFrom(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	now := s.clock.Now().UTC()
	u := userv1.User{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.log.DebugContext(ctx, "created user", "user_id", u.ID)

	return userv1.NewCreateUserResponse(u), nil
}

func createUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := dynamicpb.NewMessage(userv1.CreateUserRequestDescriptor())
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceServer).CreateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: userv1.CreateUserProcedure,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UserServiceServer).CreateUser(ctx, req.(proto.Message))
	}
	return interceptor(ctx, in, info, handler)
}

// UserServiceDesc describes user.v1.UserService for grpc.Server.
var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: userv1.ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateUser",
			Handler:    createUserHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: userv1.FilePath,
}

func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}
