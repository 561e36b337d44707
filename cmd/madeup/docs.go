package main

import (
	"fmt"
	"html/template"
	"io"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/vm"
)

// memberKinds are the value kinds whose members the reference lists.
var memberKinds = []string{"vector", "string", "mesh"}

type parameterDoc struct {
	Name        string
	Description string
	Default     string
}

type functionDoc struct {
	Name        string
	Signature   string
	Description string
	Parameters  []parameterDoc
}

type kindDoc struct {
	Kind    string
	Members []functionDoc
}

func documentFunction(f *vm.FunctionDefinition) functionDoc {
	doc := functionDoc{
		Name:        f.Name,
		Signature:   f.Signature(),
		Description: f.Description,
	}
	for _, formal := range f.Formals {
		p := parameterDoc{Name: formal.Name, Description: formal.Description}
		if formal.Default != nil {
			p.Default = compiler.Format(formal.Default)
		}
		doc.Parameters = append(doc.Parameters, p)
	}
	return doc
}

// writeDocs renders the HTML reference of every builtin and member function
// in r.
func writeDocs(w io.Writer, r *vm.Registry) error {
	tmpl, err := template.New("reference").Parse(referenceTemplate)
	if err != nil {
		return fmt.Errorf("parsing reference template: %w", err)
	}

	var functions []functionDoc
	for _, f := range r.Functions() {
		functions = append(functions, documentFunction(f))
	}

	var kinds []kindDoc
	for _, name := range memberKinds {
		kind, ok := vm.ParseKind(name)
		if !ok {
			continue
		}
		k := kindDoc{Kind: name}
		for _, f := range r.Members(kind) {
			k.Members = append(k.Members, documentFunction(f))
		}
		if len(k.Members) > 0 {
			kinds = append(kinds, k)
		}
	}

	data := struct {
		Title     string
		Functions []functionDoc
		Kinds     []kindDoc
	}{
		Title:     "Madeup Builtins",
		Functions: functions,
		Kinds:     kinds,
	}
	return tmpl.Execute(w, data)
}

func writeDocsFile(path string, r *vm.Registry) error {
	return writeTo(path, func(w io.Writer) error { return writeDocs(w, r) })
}

const referenceTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: sans-serif; max-width: 52em; margin: 2em auto; }
        code { background: #f4f4f4; padding: 0 0.2em; }
        .function { border-top: 1px solid #ddd; padding: 0.5em 0; }
        .default { color: #666; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>

    <ul class="index">
{{range .Functions}}
        <li><a href="#{{.Name}}">{{.Name}}</a></li>
{{end}}
    </ul>

{{define "function"}}
    <div class="function" id="{{.Name}}">
        <h3><code>{{.Signature}}</code></h3>
{{if .Description}}
        <p>{{.Description}}</p>
{{end}}
{{if .Parameters}}
        <dl>
{{range .Parameters}}
            <dt><code>{{.Name}}</code>{{if .Default}} <span class="default">(default {{.Default}})</span>{{end}}</dt>
            <dd>{{.Description}}</dd>
{{end}}
        </dl>
{{end}}
    </div>
{{end}}

    <h2>Functions</h2>
{{range .Functions}}{{template "function" .}}{{end}}

{{range .Kinds}}
    <h2>Members of {{.Kind}} values</h2>
{{range .Members}}{{template "function" .}}{{end}}
{{end}}
</body>
</html>
`
