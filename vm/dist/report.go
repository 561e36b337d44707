// Package dist defines the plain-data form of a Madeup run. A Report can
// cross process boundaries as canonical CBOR: the server streams it to
// clients and the CLI writes it to disk.
package dist

import (
	"github.com/google/uuid"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/geometry"
	"github.com/chazu/madeup/vm"
)

// VertexPod is one recorded turtle visit.
type VertexPod struct {
	Position [3]float64 `cbor:"1,keyasint"`
	Radius   float64    `cbor:"2,keyasint"`
	Color    [3]float64 `cbor:"3,keyasint"`
}

// PathPod is a path as recorded by the turtle.
type PathPod struct {
	Vertices []VertexPod `cbor:"1,keyasint"`
	Closed   bool        `cbor:"2,keyasint,omitempty"`
}

// MeshPod is an indexed triangle mesh with one color per position.
type MeshPod struct {
	Name      string       `cbor:"1,keyasint,omitempty"`
	Positions [][3]float64 `cbor:"2,keyasint"`
	Colors    [][3]float64 `cbor:"3,keyasint"`
	Faces     [][3]int     `cbor:"4,keyasint"`
}

// Snapshot is the geometry a consumer draws. Only the half selected by
// Mode is filled in.
type Snapshot struct {
	Mode   string    `cbor:"1,keyasint"`
	Paths  []PathPod `cbor:"2,keyasint,omitempty"`
	Meshes []MeshPod `cbor:"3,keyasint,omitempty"`
}

// ParameterPod records how one parameter of a call was bound.
type ParameterPod struct {
	Name    string `cbor:"1,keyasint"`
	Binding string `cbor:"2,keyasint"`
}

// CallPod documents one evaluated call.
type CallPod struct {
	Function   string         `cbor:"1,keyasint"`
	Span       compiler.Span  `cbor:"2,keyasint"`
	Parameters []ParameterPod `cbor:"3,keyasint,omitempty"`
}

// Report is the complete outcome of a run. Diagnostic is empty when the
// run succeeded.
type Report struct {
	RunID      string    `cbor:"1,keyasint"`
	Snapshot   Snapshot  `cbor:"2,keyasint"`
	Log        []string  `cbor:"3,keyasint,omitempty"`
	Calls      []CallPod `cbor:"4,keyasint,omitempty"`
	Diagnostic string    `cbor:"5,keyasint,omitempty"`
}

// Failed reports whether the run ended in an error.
func (r *Report) Failed() bool { return r.Diagnostic != "" }

// NewReport converts a run result into its plain-data form. err is the
// error the run returned, if any.
func NewReport(result *vm.Result, err error) *Report {
	r := &Report{RunID: uuid.NewString()}
	if err != nil {
		r.Diagnostic = vm.Diagnostic(err)
	}
	if result == nil {
		return r
	}

	r.Snapshot.Mode = result.Mode.String()
	switch result.Mode {
	case vm.Pathify:
		for _, p := range result.Paths {
			r.Snapshot.Paths = append(r.Snapshot.Paths, NewPathPod(p))
		}
	default:
		for _, m := range result.Meshes {
			r.Snapshot.Meshes = append(r.Snapshot.Meshes, NewMeshPod(m.Name, m.Trimesh))
		}
	}

	r.Log = append(r.Log, result.Log...)
	for _, c := range result.Calls {
		pod := CallPod{Function: c.Function, Span: c.Span}
		for _, p := range c.Parameters {
			pod.Parameters = append(pod.Parameters, ParameterPod{Name: p.Name, Binding: p.Binding.String()})
		}
		r.Calls = append(r.Calls, pod)
	}
	return r
}

// NewPathPod copies a path.
func NewPathPod(p *geometry.Path) PathPod {
	pod := PathPod{Closed: p.Closed, Vertices: make([]VertexPod, len(p.Vertices))}
	for i, v := range p.Vertices {
		pod.Vertices[i] = VertexPod{
			Position: triple(v.Position),
			Radius:   v.Radius,
			Color:    triple(v.Color),
		}
	}
	return pod
}

// NewMeshPod copies a mesh.
func NewMeshPod(name string, m *geometry.Trimesh) MeshPod {
	pod := MeshPod{
		Name:      name,
		Positions: make([][3]float64, len(m.Positions)),
		Colors:    make([][3]float64, len(m.Colors)),
		Faces:     append([][3]int(nil), m.Faces...),
	}
	for i, p := range m.Positions {
		pod.Positions[i] = triple(p)
	}
	for i, c := range m.Colors {
		pod.Colors[i] = triple(c)
	}
	return pod
}

// Trimesh rebuilds the geometry of a mesh pod.
func (m MeshPod) Trimesh() *geometry.Trimesh {
	out := &geometry.Trimesh{
		Positions: make([]geometry.Vec3, len(m.Positions)),
		Colors:    make([]geometry.Vec3, len(m.Colors)),
		Faces:     append([][3]int(nil), m.Faces...),
	}
	for i, p := range m.Positions {
		out.Positions[i] = geometry.V(p[0], p[1], p[2])
	}
	for i, c := range m.Colors {
		out.Colors[i] = geometry.V(c[0], c[1], c[2])
	}
	return out
}

func triple(v geometry.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
