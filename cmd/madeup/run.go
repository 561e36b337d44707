package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/madeup/geometry"
	"github.com/chazu/madeup/vm"
	"github.com/chazu/madeup/vm/dist"
)

// exports names the files a run writes its results to. "-" is stdout.
type exports struct {
	obj  string
	cbor string
}

// runFile interprets the program at path, printing its log as it goes, and
// writes the requested exports. ok is false when the program failed; the
// failure has already been printed as a diagnostic.
func runFile(path string, opts []vm.Option, out exports) (ok bool, err error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	opts = append(append([]vm.Option(nil), opts...), vm.WithLog(func(line string) {
		fmt.Println(line)
	}))
	result, runErr := vm.Interpret(string(source), opts...)
	log.Infof("ran %s", path)

	if out.obj != "" && runErr == nil {
		if err := writeTo(out.obj, func(w io.Writer) error { return writeOBJ(w, result) }); err != nil {
			return false, err
		}
	}
	if out.cbor != "" {
		report := dist.NewReport(result, runErr)
		if err := writeTo(out.cbor, func(w io.Writer) error { return writeCBOR(w, report) }); err != nil {
			return false, err
		}
	}
	return runErr == nil, nil
}

// writeTo opens path, or stdout for "-", and hands it to write.
func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeOBJ(w io.Writer, result *vm.Result) error {
	meshes := make([]geometry.NamedMesh, len(result.Meshes))
	for i, m := range result.Meshes {
		meshes[i] = geometry.NamedMesh{Name: m.Name, Mesh: m.Trimesh}
	}
	return geometry.WriteOBJ(w, meshes)
}

func writeCBOR(w io.Writer, report *dist.Report) error {
	data, err := dist.MarshalReport(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
