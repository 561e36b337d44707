package vm

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/geometry"
)

// ---------------------------------------------------------------------------
// VM: one interpretation run
// ---------------------------------------------------------------------------

var log = commonlog.GetLogger("madeup.vm")

// RenderMode selects which half of a run's output a consumer draws.
type RenderMode int

const (
	Solidify RenderMode = iota // meshes
	Pathify                    // paths as recorded
)

func (m RenderMode) String() string {
	if m == Pathify {
		return "pathify"
	}
	return "solidify"
}

// ParseRenderMode accepts "solidify" or "pathify".
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(s) {
	case "solidify", "":
		return Solidify, nil
	case "pathify":
		return Pathify, nil
	}
	return Solidify, fmt.Errorf("unknown render mode %q", s)
}

func (m RenderMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *RenderMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRenderMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Option configures a VM.
type Option func(*config)

type config struct {
	seed     Value
	sink     func(string)
	mode     RenderMode
	clock    float64
	trace    bool
	builtins *Registry
}

// WithSeed fixes the random stream so runs are reproducible. Without it the
// stream seeds itself once when the run starts.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = Integer(seed) }
}

// WithLog receives each line of the diagnostic log as it is produced.
func WithLog(sink func(string)) Option {
	return func(c *config) { c.sink = sink }
}

// WithRenderMode records which output the consumer wants.
func WithRenderMode(mode RenderMode) Option {
	return func(c *config) { c.mode = mode }
}

// WithTime sets the run clock consulted by time windows and time().
func WithTime(t float64) Option {
	return func(c *config) { c.clock = t }
}

// WithTrace records the last value of every evaluated node.
func WithTrace() Option {
	return func(c *config) { c.trace = true }
}

// WithBuiltins replaces the builtin registry.
func WithBuiltins(r *Registry) Option {
	return func(c *config) { c.builtins = r }
}

// VM owns the state of a run: the root scope, the turtle and its paths, the
// meshes, the random stream and the log.
type VM struct {
	cfg     config
	source  string
	random  *Random
	paths   []*geometry.Path
	meshes  []*Mesh
	logged  []string
	calls   []*CallRecord
	trace   *Trace
	globals *Environment
	depth   int
}

// New creates a VM ready to run a program.
func New(opts ...Option) *VM {
	cfg := config{builtins: Builtins()}
	for _, opt := range opts {
		opt(&cfg)
	}
	vm := &VM{cfg: cfg}
	vm.reset()
	return vm
}

func (vm *VM) reset() {
	vm.random = newRandom(vm.cfg.seed)
	vm.paths = []*geometry.Path{geometry.NewPath(geometry.NewTurtle())}
	vm.meshes = nil
	vm.logged = nil
	vm.calls = nil
	vm.globals = newEnvironment(nil)
	vm.depth = 0
	vm.trace = nil
	if vm.cfg.trace {
		vm.trace = newTrace()
	}
}

// Result is the outcome of a run. A failed run keeps its log and call
// records but reports no paths or meshes.
type Result struct {
	Mode   RenderMode
	Paths  []*geometry.Path
	Meshes []*Mesh
	Log    []string
	Calls  []*CallRecord
	Trace  *Trace
	Value  Value
}

// Run interprets a whole program from a fresh state.
func (vm *VM) Run(source string) (*Result, error) {
	vm.reset()
	vm.source = source

	program, err := compiler.ParseSource(source)
	if err != nil {
		return vm.fail(err)
	}
	value, err := vm.eval(program, vm.globals)
	if err != nil {
		return vm.fail(err)
	}
	log.Debugf("run finished with %d paths and %d meshes", len(vm.paths), len(vm.meshes))
	return vm.result(value), nil
}

// Interpret runs source in a new VM.
func Interpret(source string, opts ...Option) (*Result, error) {
	return New(opts...).Run(source)
}

func (vm *VM) fail(err error) (*Result, error) {
	vm.emit(Diagnostic(err))
	return &Result{
		Mode:  vm.cfg.mode,
		Log:   vm.logged,
		Calls: vm.calls,
		Trace: vm.trace,
	}, err
}

func (vm *VM) result(value Value) *Result {
	r := &Result{
		Mode:   vm.cfg.mode,
		Meshes: vm.meshes,
		Log:    vm.logged,
		Calls:  vm.calls,
		Trace:  vm.trace,
		Value:  value,
	}
	for _, p := range vm.paths {
		if len(p.Vertices) > 0 {
			r.Paths = append(r.Paths, p)
		}
	}
	return r
}

// ---------------------------------------------------------------------------
// Run state
// ---------------------------------------------------------------------------

// emit appends a line to the diagnostic log.
func (vm *VM) emit(line string) {
	vm.logged = append(vm.logged, line)
	if vm.cfg.sink != nil {
		vm.cfg.sink(line)
	}
}

func (vm *VM) current() *geometry.Path {
	return vm.paths[len(vm.paths)-1]
}

func (vm *VM) turtle() geometry.Turtle {
	return vm.current().Turtle
}

// visit records a vertex where the turtle t stands.
func (vm *VM) visit(t geometry.Turtle, radius float64, color geometry.Vec3) error {
	return vm.current().Visit(t, radius, color)
}

// steer changes the turtle without recording a vertex.
func (vm *VM) steer(f func(t *geometry.Turtle)) {
	t := vm.turtle()
	f(&t)
	vm.current().Turtle = t
}

// seal consumes the current path and starts a new one where the turtle
// stands.
func (vm *VM) seal() *geometry.Path {
	p := vm.current()
	p.Seal()
	vm.paths = append(vm.paths, geometry.NewPath(p.Turtle))
	return p
}

// insertPath adds a derived path just before the current one.
func (vm *VM) insertPath(p *geometry.Path) {
	last := len(vm.paths) - 1
	vm.paths = append(vm.paths[:last], p, vm.paths[last])
}

func (vm *VM) addMesh(name string, m *geometry.Trimesh) *Mesh {
	mesh := &Mesh{Name: name, Trimesh: m, slot: len(vm.meshes)}
	vm.meshes = append(vm.meshes, mesh)
	return mesh
}

// replaceMesh puts derived in original's place in the output. When the
// original has already been replaced the derived mesh is added instead.
func (vm *VM) replaceMesh(original, derived *Mesh) {
	if original.slot < len(vm.meshes) && vm.meshes[original.slot] == original {
		derived.slot = original.slot
		vm.meshes[original.slot] = derived
		return
	}
	derived.slot = len(vm.meshes)
	vm.meshes = append(vm.meshes, derived)
}

// excerpt returns the source text covered by span.
func (vm *VM) excerpt(span compiler.Span) string {
	lines := strings.Split(vm.source, "\n")
	var pieces []string
	for i := span.LineStart; i <= span.LineEnd && i < len(lines); i++ {
		line := []rune(lines[i])
		start, end := 0, len(line)
		if i == span.LineStart {
			start = min(span.ColumnStart, len(line))
		}
		if i == span.LineEnd {
			end = min(span.ColumnEnd, len(line))
		}
		if start > end {
			start = end
		}
		pieces = append(pieces, string(line[start:end]))
	}
	return strings.Join(pieces, "\n")
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// Session evaluates a program one chunk at a time against a root scope that
// persists between chunks.
type Session struct {
	vm *VM
}

// NewSession starts an empty session.
func NewSession(opts ...Option) *Session {
	return &Session{vm: New(opts...)}
}

// Eval parses and evaluates chunk. Definitions and variables from earlier
// chunks remain visible. A failed chunk leaves earlier state in place.
func (s *Session) Eval(chunk string) (Value, error) {
	program, err := compiler.ParseSource(chunk)
	if err != nil {
		s.vm.emit(Diagnostic(err))
		return nil, err
	}
	s.vm.source = chunk
	v, err := s.vm.eval(program, s.vm.globals)
	if err != nil {
		s.vm.emit(Diagnostic(err))
		return nil, err
	}
	return v, nil
}

// Result reports everything the session has produced so far.
func (s *Session) Result() *Result {
	return s.vm.result(nil)
}

// Variables lists the names bound at the top level.
func (s *Session) Variables() []string {
	return s.vm.globals.VariableNames()
}

// Functions lists the user functions defined at the top level.
func (s *Session) Functions() []string {
	return s.vm.globals.FunctionNames()
}

// Reset discards all session state.
func (s *Session) Reset() {
	s.vm.reset()
}
