package server

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/chazu/madeup/store"
	"github.com/chazu/madeup/vm"
)

var log = commonlog.GetLogger("madeup.server")

// Procedure paths. Every procedure exchanges google.protobuf.Struct
// messages and speaks the Connect, gRPC and gRPC-Web protocols.
const (
	InterpreterServiceName = "madeup.v1.InterpreterService"
	SketchServiceName      = "madeup.v1.SketchService"
	SessionServiceName     = "madeup.v1.SessionService"

	InterpretProcedure = "/" + InterpreterServiceName + "/Interpret"
	DescribeProcedure  = "/" + InterpreterServiceName + "/Describe"

	SaveSketchProcedure   = "/" + SketchServiceName + "/Save"
	LoadSketchProcedure   = "/" + SketchServiceName + "/Load"
	ListSketchesProcedure = "/" + SketchServiceName + "/List"
	DeleteSketchProcedure = "/" + SketchServiceName + "/Delete"

	CreateSessionProcedure  = "/" + SessionServiceName + "/CreateSession"
	EvalProcedure           = "/" + SessionServiceName + "/Eval"
	DestroySessionProcedure = "/" + SessionServiceName + "/DestroySession"
)

// MadeupServer serves the interpreter over HTTP. Connect (HTTP/JSON and
// binary protobuf), gRPC over cleartext HTTP/2 and the CBOR snapshot
// endpoint share one port.
type MadeupServer struct {
	worker   *RunWorker
	sessions *SessionStore
	mux      *http.ServeMux

	stopSweeper func()
}

// ServerOption configures a MadeupServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	sketches      *store.Store
	runOptions    []vm.Option
	sweepInterval time.Duration
	sessionTTL    time.Duration
}

// WithStore enables the sketch service and stored-sketch runs. The caller
// keeps ownership of the store.
func WithStore(s *store.Store) ServerOption {
	return func(c *serverConfig) { c.sketches = s }
}

// WithRunOptions sets interpreter options applied to every run and
// session. Per-request settings override them.
func WithRunOptions(opts ...vm.Option) ServerOption {
	return func(c *serverConfig) { c.runOptions = append(c.runOptions, opts...) }
}

// WithSessionTTL sets how long an idle session survives. The default is
// 30 minutes. Non-positive values are ignored.
func WithSessionTTL(ttl time.Duration) ServerOption {
	return func(c *serverConfig) {
		if ttl > 0 {
			c.sessionTTL = ttl
		}
	}
}

// New creates a MadeupServer.
func New(opts ...ServerOption) *MadeupServer {
	cfg := &serverConfig{
		sweepInterval: 5 * time.Minute,
		sessionTTL:    30 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sessionTTL < cfg.sweepInterval {
		cfg.sweepInterval = cfg.sessionTTL
	}

	worker := NewRunWorker(cfg.runOptions...)
	sessions := NewSessionStore(cfg.runOptions...)

	s := &MadeupServer{
		worker:   worker,
		sessions: sessions,
		mux:      http.NewServeMux(),
	}

	// Register Connect/gRPC handlers
	interp := NewInterpreterService(worker, cfg.sketches)
	s.mux.Handle(InterpretProcedure, connect.NewUnaryHandler(InterpretProcedure, interp.Interpret))
	s.mux.Handle(DescribeProcedure, connect.NewUnaryHandler(DescribeProcedure, interp.Describe))

	sessionSvc := NewSessionService(worker, sessions)
	s.mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, sessionSvc.CreateSession))
	s.mux.Handle(EvalProcedure, connect.NewUnaryHandler(EvalProcedure, sessionSvc.Eval))
	s.mux.Handle(DestroySessionProcedure, connect.NewUnaryHandler(DestroySessionProcedure, sessionSvc.DestroySession))

	if cfg.sketches != nil {
		sketchSvc := NewSketchService(cfg.sketches)
		s.mux.Handle(SaveSketchProcedure, connect.NewUnaryHandler(SaveSketchProcedure, sketchSvc.Save))
		s.mux.Handle(LoadSketchProcedure, connect.NewUnaryHandler(LoadSketchProcedure, sketchSvc.Load))
		s.mux.Handle(ListSketchesProcedure, connect.NewUnaryHandler(ListSketchesProcedure, sketchSvc.List))
		s.mux.Handle(DeleteSketchProcedure, connect.NewUnaryHandler(DeleteSketchProcedure, sketchSvc.Delete))
	}

	snapshots := &snapshotHandler{worker: worker, sketches: cfg.sketches}
	s.mux.HandleFunc("POST /snapshot", snapshots.post)
	s.mux.HandleFunc("GET /snapshot/{name}", snapshots.get)

	s.stopSweeper = sessions.StartSweeper(cfg.sweepInterval, cfg.sessionTTL)

	return s
}

// Handler returns the server's HTTP handler.
func (s *MadeupServer) Handler() http.Handler {
	return s.mux
}

// Serve accepts connections on l until it fails. Cleartext HTTP/2 is
// enabled so gRPC clients can connect without TLS.
func (s *MadeupServer) Serve(l net.Listener) error {
	var protocols http.Protocols
	protocols.SetHTTP1(true)
	protocols.SetUnencryptedHTTP2(true)

	srv := &http.Server{
		Handler:           s.mux,
		Protocols:         &protocols,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.Serve(l)
}

// ListenAndServe starts the server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *MadeupServer) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	fmt.Printf("Madeup server listening on %s\n", l.Addr())
	fmt.Printf("  Connect (HTTP/JSON): http://%s%s\n", l.Addr(), InterpretProcedure)
	fmt.Printf("  gRPC (binary):       grpc://%s\n", l.Addr())
	fmt.Printf("  CBOR snapshots:      http://%s/snapshot\n", l.Addr())
	return s.Serve(l)
}

// Stop shuts down the background workers.
func (s *MadeupServer) Stop() {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	s.worker.Stop()
}
