package server

import (
	"fmt"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/store"
	"github.com/chazu/madeup/vm"
	"github.com/chazu/madeup/vm/dist"
)

// ---------------------------------------------------------------------------
// Request fields
//
// Services exchange google.protobuf.Struct messages, so fields are read by
// name and checked by hand.
// ---------------------------------------------------------------------------

func stringField(msg *structpb.Struct, name string) (string, bool, error) {
	v, ok := msg.GetFields()[name]
	if !ok {
		return "", false, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false, invalidArgument("%s must be a string", name)
	}
	return s.StringValue, true, nil
}

func numberField(msg *structpb.Struct, name string) (float64, bool, error) {
	v, ok := msg.GetFields()[name]
	if !ok {
		return 0, false, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false, invalidArgument("%s must be a number", name)
	}
	return n.NumberValue, true, nil
}

func requiredString(msg *structpb.Struct, name string) (string, error) {
	s, ok, err := stringField(msg, name)
	if err != nil {
		return "", err
	}
	if !ok || s == "" {
		return "", invalidArgument("%s is required", name)
	}
	return s, nil
}

func invalidArgument(format string, args ...interface{}) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// runOptions reads the optional mode, seed and time fields of a request.
func runOptions(msg *structpb.Struct) ([]vm.Option, error) {
	var opts []vm.Option
	if s, ok, err := stringField(msg, "mode"); err != nil {
		return nil, err
	} else if ok {
		mode, err := vm.ParseRenderMode(s)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		opts = append(opts, vm.WithRenderMode(mode))
	}
	if n, ok, err := numberField(msg, "seed"); err != nil {
		return nil, err
	} else if ok {
		if n != float64(int64(n)) {
			return nil, invalidArgument("seed must be an integer")
		}
		opts = append(opts, vm.WithSeed(int64(n)))
	}
	if n, ok, err := numberField(msg, "time"); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, vm.WithTime(n))
	}
	return opts, nil
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

func response(fields map[string]interface{}) (*connect.Response[structpb.Struct], error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("encoding response: %w", err))
	}
	return connect.NewResponse(msg), nil
}

func tripleList(v [3]float64) []interface{} {
	return []interface{}{v[0], v[1], v[2]}
}

func spanFields(s compiler.Span) map[string]interface{} {
	return map[string]interface{}{
		"lineStart":   s.LineStart,
		"lineEnd":     s.LineEnd,
		"columnStart": s.ColumnStart,
		"columnEnd":   s.ColumnEnd,
	}
}

// reportFields renders a run report as plain message fields.
func reportFields(r *dist.Report) map[string]interface{} {
	paths := make([]interface{}, len(r.Snapshot.Paths))
	for i, p := range r.Snapshot.Paths {
		vertices := make([]interface{}, len(p.Vertices))
		for j, v := range p.Vertices {
			vertices[j] = map[string]interface{}{
				"position": tripleList(v.Position),
				"radius":   v.Radius,
				"color":    tripleList(v.Color),
			}
		}
		paths[i] = map[string]interface{}{"vertices": vertices, "closed": p.Closed}
	}

	meshes := make([]interface{}, len(r.Snapshot.Meshes))
	for i, m := range r.Snapshot.Meshes {
		positions := make([]interface{}, len(m.Positions))
		for j, p := range m.Positions {
			positions[j] = tripleList(p)
		}
		colors := make([]interface{}, len(m.Colors))
		for j, c := range m.Colors {
			colors[j] = tripleList(c)
		}
		faces := make([]interface{}, len(m.Faces))
		for j, f := range m.Faces {
			faces[j] = []interface{}{f[0], f[1], f[2]}
		}
		meshes[i] = map[string]interface{}{
			"name":      m.Name,
			"positions": positions,
			"colors":    colors,
			"faces":     faces,
		}
	}

	calls := make([]interface{}, len(r.Calls))
	for i, c := range r.Calls {
		params := make([]interface{}, len(c.Parameters))
		for j, p := range c.Parameters {
			params[j] = map[string]interface{}{"name": p.Name, "binding": p.Binding}
		}
		calls[i] = map[string]interface{}{
			"function":   c.Function,
			"span":       spanFields(c.Span),
			"parameters": params,
		}
	}

	return map[string]interface{}{
		"runId":      r.RunID,
		"mode":       r.Snapshot.Mode,
		"paths":      paths,
		"meshes":     meshes,
		"log":        stringList(r.Log),
		"calls":      calls,
		"diagnostic": r.Diagnostic,
		"success":    !r.Failed(),
	}
}

// functionFields documents a builtin.
func functionFields(f *vm.FunctionDefinition) map[string]interface{} {
	params := make([]interface{}, len(f.Formals))
	for i, formal := range f.Formals {
		p := map[string]interface{}{
			"name":        formal.Name,
			"description": formal.Description,
		}
		if formal.Default != nil {
			p["default"] = compiler.Format(formal.Default)
		}
		params[i] = p
	}
	return map[string]interface{}{
		"name":        f.Name,
		"signature":   f.Signature(),
		"description": f.Description,
		"parameters":  params,
	}
}

// sketchFields describes a sketch without its source.
func sketchFields(sk *store.Sketch) map[string]interface{} {
	return map[string]interface{}{
		"name":     sk.Name,
		"modified": sk.Modified.Format(time.RFC3339Nano),
	}
}
