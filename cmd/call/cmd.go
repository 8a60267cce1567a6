package call

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/inngest/rpcvalidate/pkg/cli/output"
	"github.com/inngest/rpcvalidate/pkg/errdetail"
	"github.com/inngest/rpcvalidate/pkg/logger"
	"github.com/inngest/rpcvalidate/pkg/userapi"
	"github.com/inngest/rpcvalidate/pkg/userv1"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	ProtocolGRPC    = "grpc"
	ProtocolConnect = "connect"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Send a CreateUser request and show any field violations",
		UsageText: "rpcvalidate call --name Jane --email jane@example.com --password secret123",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "127.0.0.1:8080",
				Usage: "Address of the UserService",
			},
			&cli.StringFlag{
				Name:  "protocol",
				Value: ProtocolGRPC,
				Usage: "Protocol to call with: grpc or connect",
				Validator: func(p string) error {
					if p != ProtocolGRPC && p != ProtocolConnect {
						return fmt.Errorf("unknown protocol %q", p)
					}
					return nil
				},
			},
			&cli.StringFlag{Name: "name", Usage: "User name"},
			&cli.StringFlag{Name: "email", Usage: "User email"},
			&cli.StringFlag{Name: "password", Usage: "Password"},
			&cli.StringFlag{
				Name:  "password-confirmation",
				Usage: "Password confirmation.  Defaults to --password",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Second,
				Usage: "Request timeout",
			},
		},
		Action: action,
	}
}

// Request builds the CreateUser request from the command's flags.
func Request(cmd *cli.Command) userv1.CreateUserRequest {
	req := userv1.CreateUserRequest{
		Name:                 cmd.String("name"),
		Email:                cmd.String("email"),
		Password:             cmd.String("password"),
		PasswordConfirmation: cmd.String("password-confirmation"),
	}
	if !cmd.IsSet("password-confirmation") {
		req.PasswordConfirmation = req.Password
	}
	return req
}

// Result is the JSON form of a call's outcome.
type Result struct {
	User       *userResult                `json:"user,omitempty"`
	Code       string                     `json:"code,omitempty"`
	Message    string                     `json:"message,omitempty"`
	Violations []errdetail.FieldViolation `json:"violations,omitempty"`
	Details    []errdetail.ErrorDetail    `json:"details,omitempty"`
}

type userResult struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func action(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	protocol := cmd.String("protocol")
	l := logger.StdlibLogger(ctx)

	var client userapi.UserClient
	switch protocol {
	case ProtocolConnect:
		client = userapi.NewConnectClient(http.DefaultClient, baseURL(addr))
	default:
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		defer conn.Close()
		client = userapi.NewClient(conn)
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	l.Debug("calling CreateUser", "addr", addr, "protocol", protocol)
	return Run(ctx, cmd, client, Request(cmd))
}

// baseURL turns a host:port address into an http URL.  Addresses that
// already carry a scheme are kept.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

// Run sends req with client and writes the outcome to the root command's
// writer.  A rejected request is reported and returned as an error.
func Run(ctx context.Context, cmd *cli.Command, client userapi.UserClient, req userv1.CreateUserRequest) error {
	w := cmd.Root().Writer
	asJSON := cmd.Bool("json")

	u, callErr := client.CreateUser(ctx, req)
	if callErr == nil {
		if asJSON {
			return output.JSON(w, Result{User: &userResult{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				CreatedAt: u.CreatedAt,
				UpdatedAt: u.UpdatedAt,
			}})
		}
		return output.TextUser(w, u)
	}

	st, ok := callStatus(callErr)
	if !ok {
		return callErr
	}

	fvs, skipped := errdetail.Inspect(callErr)
	if skipped != nil {
		logger.StdlibLogger(ctx).Warn("skipped undecodable error details", "error", skipped)
	}

	var err error
	if asJSON {
		err = output.JSON(w, Result{
			Code:       st.Code().String(),
			Message:    st.Message(),
			Violations: fvs,
			Details:    errdetail.ExtractErrorDetails(callErr),
		})
	} else if st.Code() == codes.InvalidArgument {
		err = output.TextFieldViolations(w, fvs)
	}
	if err != nil {
		return err
	}

	return fmt.Errorf("CreateUser failed: %s: %s", st.Code(), st.Message())
}

// callStatus reads the code and message of a gRPC or Connect error.  Connect
// codes share their numeric values with gRPC codes.
func callStatus(err error) (*status.Status, bool) {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return status.New(codes.Code(cerr.Code()), cerr.Message()), true
	}
	return status.FromError(err)
}
