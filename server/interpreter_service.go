package server

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chazu/madeup/store"
	"github.com/chazu/madeup/vm"
)

// InterpreterService implements madeup.v1.InterpreterService.
type InterpreterService struct {
	worker   *RunWorker
	sketches *store.Store
	builtins *vm.Registry
}

// NewInterpreterService creates an InterpreterService. sketches may be nil,
// in which case requests naming a stored sketch are rejected.
func NewInterpreterService(worker *RunWorker, sketches *store.Store) *InterpreterService {
	return &InterpreterService{
		worker:   worker,
		sketches: sketches,
		builtins: vm.Builtins(),
	}
}

// Interpret runs a program and returns its report. The program is either
// the source field or the stored sketch named by the sketch field.
// Programs that fail still succeed at the transport level; the report
// carries the diagnostic.
func (s *InterpreterService) Interpret(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	source, err := s.source(req.Msg)
	if err != nil {
		return nil, err
	}
	opts, err := runOptions(req.Msg)
	if err != nil {
		return nil, err
	}

	report, err := s.worker.Interpret(ctx, source, opts...)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	if report.Failed() {
		log.Debugf("run %s failed: %s", report.RunID, report.Diagnostic)
	}
	return response(reportFields(report))
}

func (s *InterpreterService) source(msg *structpb.Struct) (string, error) {
	name, ok, err := stringField(msg, "sketch")
	if err != nil {
		return "", err
	}
	if !ok {
		return requiredString(msg, "source")
	}
	if s.sketches == nil {
		return "", connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("no sketch store is configured"))
	}
	sk, err := s.sketches.Load(name)
	if err != nil {
		return "", sketchError(err)
	}
	return sk.Source, nil
}

// Describe documents the builtin functions. An optional name selects one
// function; an optional kind ("vector", "string", "mesh", ...) selects the
// member functions of that kind instead of the free functions.
func (s *InterpreterService) Describe(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	name, _, err := stringField(req.Msg, "name")
	if err != nil {
		return nil, err
	}
	kindName, hasKind, err := stringField(req.Msg, "kind")
	if err != nil {
		return nil, err
	}

	var defs []*vm.FunctionDefinition
	if hasKind {
		kind, ok := vm.ParseKind(kindName)
		if !ok {
			return nil, invalidArgument("unknown kind %q", kindName)
		}
		defs = s.builtins.Members(kind)
	} else {
		defs = s.builtins.Functions()
	}

	var functions []interface{}
	for _, f := range defs {
		if name != "" && f.Name != name {
			continue
		}
		functions = append(functions, functionFields(f))
	}
	if name != "" && len(functions) == 0 {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("no builtin named %q", name))
	}
	return response(map[string]interface{}{"functions": functions})
}

// sketchError maps store errors to Connect codes.
func sketchError(err error) error {
	switch {
	case errors.Is(err, store.ErrSketchNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, store.ErrInvalidName):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
