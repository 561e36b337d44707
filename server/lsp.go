package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "madeup-lsp"

// document is the analysis of one open file: its text, its parse and the
// traced outcome of running it.
type document struct {
	text    string
	program *compiler.Block
	result  *vm.Result
	err     error
}

// LspServer bridges LSP editor features to the interpreter. Every change
// reruns the document with tracing on, so hovers can show the values the
// program actually produced.
type LspServer struct {
	worker   *RunWorker
	opts     []vm.Option
	builtins *vm.Registry

	mu   sync.Mutex
	docs map[string]*document // URI → latest analysis

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server. opts configure the runs behind
// diagnostics and hovers.
func NewLSP(opts ...vm.Option) *LspServer {
	s := &LspServer{
		worker:   NewRunWorker(),
		opts:     append(append([]vm.Option(nil), opts...), vm.WithTrace()),
		builtins: vm.Builtins(),
		docs:     make(map[string]*document),
		version:  "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Madeup LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{":"},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := s.update(params.TextDocument.URI, params.TextDocument.Text)
	s.publishDiagnostics(ctx, params.TextDocument.URI, doc)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc := s.update(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, doc)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update analyzes text and records it as the current state of uri.
func (s *LspServer) update(uri protocol.DocumentUri, text string) *document {
	doc := s.analyze(text)
	s.mu.Lock()
	s.docs[string(uri)] = doc
	s.mu.Unlock()
	return doc
}

// TODO: bound evaluation time once the evaluator accepts a context; an
// endless loop in an open document currently stalls the worker.
func (s *LspServer) analyze(text string) *document {
	value, err := s.worker.Do(context.Background(), func() interface{} {
		doc := &document{text: text}
		doc.program, _ = compiler.ParseSource(text)
		doc.result, doc.err = vm.Interpret(text, s.opts...)
		return doc
	})
	if err != nil {
		return &document{text: text, err: err}
	}
	return value.(*document)
}

func (s *LspServer) lookup(uri protocol.DocumentUri) (*document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[string(uri)]
	return doc, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(doc.text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return s.complete(doc, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return s.hover(doc, params.Position), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	def := userFunction(doc.program, extractWord(doc.text, params.Position))
	if def == nil {
		return nil, nil
	}
	return []protocol.Location{{
		URI:   params.TextDocument.URI,
		Range: spanRange(def.Span()),
	}}, nil
}

// --- Analysis-backed logic ---

func (s *LspServer) complete(doc *document, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	if strings.HasPrefix(prefix, ":") {
		kind := protocol.CompletionItemKindConstant
		detail := "symbol"
		for _, name := range compiler.SymbolNames() {
			if strings.HasPrefix(name, prefix[1:]) {
				insert := name
				items = append(items, protocol.CompletionItem{
					Label:      ":" + name,
					Kind:       &kind,
					Detail:     &detail,
					InsertText: &insert,
				})
			}
		}
		return items
	}

	// Keywords
	for _, word := range compiler.Keywords() {
		if strings.HasPrefix(word, prefix) {
			kind := protocol.CompletionItemKindKeyword
			insert := word
			items = append(items, protocol.CompletionItem{
				Label:      word,
				Kind:       &kind,
				InsertText: &insert,
			})
		}
	}

	// User functions shadow builtins of the same name
	defined := make(map[string]bool)
	for _, def := range userFunctions(doc.program) {
		if defined[def.Name] || !strings.HasPrefix(def.Name, prefix) {
			continue
		}
		defined[def.Name] = true
		kind := protocol.CompletionItemKindFunction
		detail := header(def)
		insert := def.Name
		items = append(items, protocol.CompletionItem{
			Label:      def.Name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &insert,
		})
	}

	// Builtins
	for _, f := range s.builtins.Functions() {
		if defined[f.Name] || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindFunction
		detail := f.Signature()
		insert := f.Name
		item := protocol.CompletionItem{
			Label:      f.Name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &insert,
		}
		if f.Description != "" {
			item.Documentation = f.Description
		}
		items = append(items, item)
	}

	// Variables assigned at the top level
	seen := make(map[string]bool)
	for _, name := range topLevelVariables(doc.program) {
		if seen[name] || defined[name] || !strings.HasPrefix(name, prefix) {
			continue
		}
		seen[name] = true
		kind := protocol.CompletionItemKindVariable
		insert := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			InsertText: &insert,
		})
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	return items
}

func (s *LspServer) hover(doc *document, pos protocol.Position) *protocol.Hover {
	var b strings.Builder

	word := extractWord(doc.text, pos)
	if def := userFunction(doc.program, word); def != nil {
		fmt.Fprintf(&b, "**%s**\n\n", header(def))
	} else if f, ok := s.builtins.Lookup(word); ok {
		fmt.Fprintf(&b, "**%s**\n\n", f.Signature())
		if f.Description != "" {
			b.WriteString(f.Description)
			b.WriteString("\n\n")
		}
		for _, formal := range f.Formals {
			if formal.Description != "" {
				fmt.Fprintf(&b, "- `%s`: %s\n", formal.Name, formal.Description)
			}
		}
	}

	if doc.result != nil {
		entry, ok := doc.result.Trace.At(int(pos.Line), int(pos.Character))
		if ok && entry.Value != nil {
			if b.Len() > 0 {
				b.WriteString("\n---\n\n")
			}
			if expr, isExpr := entry.Node.(compiler.Expr); isExpr {
				fmt.Fprintf(&b, "`%s` was `%s`", firstLine(compiler.Format(expr)), entry.Value)
			} else {
				fmt.Fprintf(&b, "was `%s`", entry.Value)
			}
			if len(entry.Prevalues) > 0 {
				operands := make([]string, len(entry.Prevalues))
				for i, v := range entry.Prevalues {
					operands[i] = "`" + v.String() + "`"
				}
				fmt.Fprintf(&b, " from %s", strings.Join(operands, " and "))
			}
			b.WriteString("\n")
		}
	}

	if b.Len() == 0 {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, doc *document) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics(doc),
	})
}

// diagnostics reports a document's failure, if any, at the span the
// interpreter blamed.
func diagnostics(doc *document) []protocol.Diagnostic {
	if doc.err == nil {
		return []protocol.Diagnostic{}
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	d := protocol.Diagnostic{
		Severity: &severity,
		Source:   &source,
		Message:  doc.err.Error(),
	}

	var ce *compiler.Error
	var ve *vm.Error
	switch {
	case errors.As(doc.err, &ce):
		d.Range = spanRange(ce.Span)
		d.Message = ce.Message
	case errors.As(doc.err, &ve):
		if ve.Span != nil {
			d.Range = spanRange(*ve.Span)
		}
		d.Message = ve.Message
		if ve.Call != nil {
			d.Message = fmt.Sprintf("%s (in %s)", ve.Message, ve.Call.Function)
		}
	}
	return []protocol.Diagnostic{d}
}

func spanRange(s compiler.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(s.LineStart), Character: protocol.UInteger(s.ColumnStart)},
		End:   protocol.Position{Line: protocol.UInteger(s.LineEnd), Character: protocol.UInteger(s.ColumnEnd)},
	}
}

// --- Program helpers ---

func userFunctions(program *compiler.Block) []*compiler.FunctionDefinition {
	if program == nil {
		return nil
	}
	var defs []*compiler.FunctionDefinition
	for _, stmt := range program.Statements {
		if def, ok := stmt.(*compiler.FunctionDefinition); ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// userFunction returns the last top-level definition of name.
func userFunction(program *compiler.Block, name string) *compiler.FunctionDefinition {
	var found *compiler.FunctionDefinition
	for _, def := range userFunctions(program) {
		if def.Name == name {
			found = def
		}
	}
	return found
}

func topLevelVariables(program *compiler.Block) []string {
	if program == nil {
		return nil
	}
	var names []string
	for _, stmt := range program.Statements {
		if a, ok := stmt.(*compiler.Assignment); ok {
			if id, ok := a.Target.(*compiler.Identifier); ok {
				names = append(names, id.Name)
			}
		}
	}
	return names
}

// header renders the first line of a definition: to name(formals).
func header(def *compiler.FunctionDefinition) string {
	formals := make([]string, len(def.Formals))
	for i, f := range def.Formals {
		formals[i] = f.Name
		if f.Default != nil {
			formals[i] += " = " + compiler.Format(f.Default)
		}
	}
	return "to " + def.Name + "(" + strings.Join(formals, ", ") + ")"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
// A symbol fragment keeps its leading colon.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	if start > 0 && line[start-1] == ':' {
		start--
	}

	if start == col {
		return ""
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Find start
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}

	// Find end
	end := col
	for end < len(line) && isWordByte(line[end]) {
		end++
	}

	if start == end {
		return ""
	}

	return line[start:end]
}

func isWordByte(c byte) bool {
	ch := rune(c)
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func boolPtr(b bool) *bool {
	return &b
}
