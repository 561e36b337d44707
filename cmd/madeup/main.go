// Madeup CLI - runs turtle programs, exports their geometry and hosts the
// interpreter and language servers
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/madeup/manifest"
	"github.com/chazu/madeup/server"
	"github.com/chazu/madeup/store"
	"github.com/chazu/madeup/vm"
)

var log = commonlog.GetLogger("madeup.cmd")

// settings are the command line values that can override the manifest.
type settings struct {
	mode  string
	seed  int64
	time  float64
	addr  string
	store string

	set map[string]bool // flags given explicitly
}

func main() {
	verbosity := flag.Int("v", 0, "Log verbosity (0 = notices and errors, 2 = debug)")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	objPath := flag.String("obj", "", "Write the solidified meshes as Wavefront OBJ (- for stdout)")
	cborPath := flag.String("cbor", "", "Write the run report as CBOR (- for stdout)")
	docsPath := flag.String("docs", "", "Write an HTML reference of the builtins and exit")
	serveMode := flag.Bool("serve", false, "Start the interpreter server (gRPC + Connect HTTP/JSON)")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")

	var s settings
	flag.StringVar(&s.mode, "mode", "solidify", "Render mode: solidify or pathify")
	flag.Int64Var(&s.seed, "seed", 0, "Seed for the random stream")
	flag.Float64Var(&s.time, "time", 0, "Run clock for time windows and time()")
	flag.StringVar(&s.addr, "addr", ":8080", "Server address (used with -serve)")
	flag.StringVar(&s.store, "store", "", "Sketch database (used with -serve)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: madeup [options] [file.mup]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a Madeup program. Without a file, runs the entry of the nearest\n")
		fmt.Fprintf(os.Stderr, "%s or starts the REPL.\n\n", manifest.FileName)
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  madeup -i                        # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  madeup vase.mup -obj vase.obj    # Export the meshes\n")
		fmt.Fprintf(os.Stderr, "  madeup -mode pathify -cbor - a.mup  # Dump the paths as CBOR\n")
		fmt.Fprintf(os.Stderr, "  madeup -docs builtins.html       # Builtin reference\n")
		fmt.Fprintf(os.Stderr, "  madeup -serve -addr :9000        # Interpreter server\n")
		fmt.Fprintf(os.Stderr, "  madeup -lsp                      # Language server\n")
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	s.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { s.set[f.Name] = true })

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if m != nil {
		log.Infof("using %s in %s", manifest.FileName, m.Dir)
	}

	opts, err := s.options(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *docsPath != "" {
		if err := writeDocsFile(*docsPath, vm.Builtins()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *lspMode {
		if err := server.NewLSP(opts...).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "LSP error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *serveMode {
		if err := serve(s.serverAddr(m), s.storePath(m), opts); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	path := flag.Arg(0)
	if path == "" && m != nil && !*interactive {
		path = m.EntryPath()
	}

	if *interactive || path == "" {
		runREPL(opts)
		return
	}

	ok, err := runFile(path, opts, exports{obj: *objPath, cbor: *cborPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

// options merges the manifest's render settings with the flags. Flags given
// on the command line win.
func (s settings) options(m *manifest.Manifest) ([]vm.Option, error) {
	var opts []vm.Option
	if m != nil {
		opts = append(opts, m.Options()...)
	}
	if s.set["mode"] {
		mode, err := vm.ParseRenderMode(s.mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vm.WithRenderMode(mode))
	}
	if s.set["seed"] {
		opts = append(opts, vm.WithSeed(s.seed))
	}
	if s.set["time"] {
		opts = append(opts, vm.WithTime(s.time))
	}
	return opts, nil
}

func (s settings) serverAddr(m *manifest.Manifest) string {
	if m != nil && !s.set["addr"] {
		return m.Server.Addr
	}
	return s.addr
}

// storePath is empty when neither the flag nor a manifest names a database;
// the server then runs without sketch storage.
func (s settings) storePath(m *manifest.Manifest) string {
	if s.set["store"] || m == nil {
		return s.store
	}
	return m.StorePath()
}

func serve(addr, storePath string, opts []vm.Option) error {
	serverOpts := []server.ServerOption{server.WithRunOptions(opts...)}
	if storePath != "" {
		sketches, err := store.Open(storePath)
		if err != nil {
			return err
		}
		defer sketches.Close()
		serverOpts = append(serverOpts, server.WithStore(sketches))
	}

	srv := server.New(serverOpts...)
	defer srv.Stop()
	return srv.ListenAndServe(addr)
}
