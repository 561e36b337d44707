package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chazu/madeup/store"
	"github.com/chazu/madeup/vm"
)

// ---------------------------------------------------------------------------
// Shared test infrastructure for server package tests.
//
// One worker serves every test that doesn't need its own. Runs never share
// state, so tests can use it freely.
// ---------------------------------------------------------------------------

var testWorker *RunWorker

// TestMain starts a single seeded worker for all server tests.
func TestMain(m *testing.M) {
	testWorker = NewRunWorker(vm.WithSeed(1))

	code := m.Run()

	testWorker.Stop()
	os.Exit(code)
}

const triangle = "moveto(x=0, y=0)\nmoveto(x=1, y=0)\nmoveto(x=0, y=1)\npolygon(name = \"tri\")\nprint(message = \"done\")"

// newTestStore opens a sketch store in a temporary directory.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "sketches.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ---------------------------------------------------------------------------
// Request builder helpers
// ---------------------------------------------------------------------------

func msg(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func connectReq(t *testing.T, fields map[string]interface{}) *connect.Request[structpb.Struct] {
	t.Helper()
	return connect.NewRequest(msg(t, fields))
}

func bg() context.Context {
	return context.Background()
}

// field returns a top-level response field, failing the test when absent.
func field(t *testing.T, resp *connect.Response[structpb.Struct], name string) *structpb.Value {
	t.Helper()
	v, ok := resp.Msg.GetFields()[name]
	if !ok {
		t.Fatalf("response has no %q field: %v", name, resp.Msg)
	}
	return v
}

func list(t *testing.T, resp *connect.Response[structpb.Struct], name string) []*structpb.Value {
	t.Helper()
	return field(t, resp, name).GetListValue().GetValues()
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %v error, got none", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Errorf("code = %v, want %v (%v)", got, code, err)
	}
}
