package userapi

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/inngest/rpcvalidate/pkg/userv1"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/dynamicpb"
)

// UserClient creates users over either gRPC or Connect.
type UserClient interface {
	CreateUser(ctx context.Context, req userv1.CreateUserRequest) (userv1.User, error)
}

// Client calls user.v1.UserService over gRPC.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// CreateUser sends req and returns the created user.  Validation failures
// come back as gRPC status errors carrying a google.rpc.BadRequest detail.
func (c *Client) CreateUser(ctx context.Context, req userv1.CreateUserRequest) (userv1.User, error) {
	out := userv1.NewCreateUserResponseMessage()
	if err := c.cc.Invoke(ctx, userv1.CreateUserProcedure, req.Message(), out); err != nil {
		return userv1.User{}, err
	}
	return userv1.UserFromResponse(out)
}

// ConnectClient calls user.v1.UserService over the Connect protocol.
type ConnectClient struct {
	createUser *connect.Client[dynamicpb.Message, dynamicpb.Message]
}

// NewConnectClient returns a client for the service at baseURL, eg.
// "http://127.0.0.1:8080".  A nil httpClient uses http.DefaultClient.
func NewConnectClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ConnectClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts = append([]connect.ClientOption{
		connect.WithSchema(createUserMethod()),
		connect.WithResponseInitializer(initDynamicMessage),
	}, opts...)

	return &ConnectClient{
		createUser: connect.NewClient[dynamicpb.Message, dynamicpb.Message](
			httpClient,
			strings.TrimRight(baseURL, "/")+userv1.CreateUserProcedure,
			opts...,
		),
	}
}

// CreateUser sends req and returns the created user.  Validation failures
// come back as *connect.Error values carrying a google.rpc.BadRequest detail.
func (c *ConnectClient) CreateUser(ctx context.Context, req userv1.CreateUserRequest) (userv1.User, error) {
	res, err := c.createUser.CallUnary(ctx, connect.NewRequest(req.Message()))
	if err != nil {
		return userv1.User{}, err
	}
	return userv1.UserFromResponse(res.Msg)
}
