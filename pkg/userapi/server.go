package userapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/inngest/rpcvalidate/pkg/logger"
	"github.com/inngest/rpcvalidate/pkg/validation"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 10 * time.Second

type ServerOpts struct {
	// Validator checks requests.  validation.Default is used when nil.
	Validator *validation.Validator
	// Service handles validated requests.  NewService is used when nil.
	Service UserServiceServer
	// Reflection registers the gRPC reflection services.
	Reflection bool
	Logger     logger.Logger
}

func (o ServerOpts) withDefaults() (ServerOpts, error) {
	if o.Logger == nil {
		o.Logger = logger.VoidLogger()
	}
	if o.Validator == nil {
		v, err := validation.Default()
		if err != nil {
			return o, err
		}
		o.Validator = v
	}
	if o.Service == nil {
		o.Service = NewService(WithServiceLogger(o.Logger))
	}
	return o, nil
}

// NewServer builds a grpc.Server with UserService and the validation
// interceptor registered.
func NewServer(opts ServerOpts) (*grpc.Server, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(
		grpc.UnaryInterceptor(NewValidationUnaryInterceptor(opts.Validator, opts.Logger)),
	)
	RegisterUserServiceServer(srv, opts.Service)
	if opts.Reflection {
		reflection.Register(srv)
	}
	return srv, nil
}

// Handler serves srv over HTTP/2 without TLS, so plain-text gRPC clients can
// reach it through net/http.  Requests that are not gRPC go to rpc, usually
// the result of NewConnectHandler, when it is non-nil.  GET /health answers
// plain HTTP health checks.
func Handler(srv *grpc.Server, rpc http.Handler) http.Handler {
	r := chi.NewMux()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Get("/health", HealthCheck)
	})
	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if rpc != nil && !isGRPC(req) {
			rpc.ServeHTTP(w, req)
			return
		}
		srv.ServeHTTP(w, req)
	}))

	return h2c.NewHandler(r, &http2.Server{})
}

// isGRPC reports whether req uses the gRPC protocol over HTTP/2.  gRPC-Web
// requests are left to the Connect handler.
func isGRPC(req *http.Request) bool {
	ct := req.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/grpc") || strings.HasPrefix(ct, "application/grpc-web") {
		return false
	}
	return req.ProtoMajor == 2
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"result":"ok"}`))
}

// ListenAndServe serves opts on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, opts ServerOpts) error {
	l := opts.Logger
	if l == nil {
		l = logger.StdlibLogger(ctx)
		opts.Logger = l
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	srv, err := NewServer(opts)
	if err != nil {
		return err
	}
	rpc, err := NewConnectHandler(opts)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Handler:           Handler(srv, rpc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		l.Info("serving user.v1.UserService", "addr", lis.Addr().String(), "reflection", opts.Reflection)
		if err := httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		l.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		srv.Stop()
		return err
	})

	return eg.Wait()
}
