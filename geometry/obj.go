package geometry

import (
	"bufio"
	"fmt"
	"io"
)

// NamedMesh pairs a mesh with the name it was given, if any.
type NamedMesh struct {
	Name string
	Mesh *Trimesh
}

// WriteOBJ writes the meshes as Wavefront OBJ objects. Vertex colors use the
// common "v x y z r g b" extension. Unnamed meshes are called mesh-N.
func WriteOBJ(w io.Writer, meshes []NamedMesh) error {
	bw := bufio.NewWriter(w)
	offset := 1
	for i, nm := range meshes {
		name := nm.Name
		if name == "" {
			name = fmt.Sprintf("mesh-%d", i)
		}
		fmt.Fprintf(bw, "o %s\n", name)
		m := nm.Mesh
		for j, p := range m.Positions {
			c := Vec3{1, 1, 1}
			if j < len(m.Colors) {
				c = m.Colors[j]
			}
			fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p.X, p.Y, p.Z, c.X, c.Y, c.Z)
		}
		for _, f := range m.Faces {
			fmt.Fprintf(bw, "f %d %d %d\n", f[0]+offset, f[1]+offset, f[2]+offset)
		}
		offset += len(m.Positions)
	}
	return bw.Flush()
}
