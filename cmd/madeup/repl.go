package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/vm"
)

const (
	historyFile = ".madeup_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

// repl evaluates chunks against one session. It is separate from the line
// editor so the evaluation side can be driven from tests.
type repl struct {
	opts    []vm.Option
	session *vm.Session
	out     io.Writer
}

func newREPL(out io.Writer, opts []vm.Option) *repl {
	r := &repl{out: out}
	r.opts = append(append([]vm.Option(nil), opts...), vm.WithLog(func(line string) {
		fmt.Fprintln(r.out, line)
	}))
	r.session = vm.NewSession(r.opts...)
	return r
}

func runREPL(opts []vm.Option) {
	fmt.Println("Madeup REPL (type 'exit' to quit, ':help' for commands)")
	fmt.Println("A blank line runs a multi-line block.")
	fmt.Println()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	r := newREPL(os.Stdout, opts)
	var buffer strings.Builder

	for {
		prompt := promptMain
		if buffer.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			buffer.Reset()
			continue
		}
		if err != nil {
			break
		}

		if buffer.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "exit" || trimmed == "quit" {
				break
			}
			if strings.HasPrefix(trimmed, ":") && !strings.Contains(trimmed, "=") {
				ln.AppendHistory(trimmed)
				r.command(trimmed)
				continue
			}
			if trimmed == "" {
				continue
			}
		}

		// Blank line runs the accumulated block
		if strings.TrimSpace(line) == "" {
			chunk := buffer.String()
			buffer.Reset()
			ln.AppendHistory(chunk)
			r.eval(chunk)
			continue
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)

		if complete(buffer.String()) {
			chunk := buffer.String()
			buffer.Reset()
			ln.AppendHistory(chunk)
			r.eval(chunk)
		}
	}

	fmt.Println()
}

// complete reports whether a single line can run on its own. Lines that open
// a block, or anything already spanning several lines, wait for a blank line.
func complete(chunk string) bool {
	if strings.Contains(chunk, "\n") {
		return false
	}
	_, err := compiler.ParseSource(chunk)
	return err == nil
}

// eval runs a chunk and prints its value. Failures reach the output through
// the session's log.
func (r *repl) eval(chunk string) {
	v, err := r.session.Eval(chunk)
	if err != nil || v == nil {
		return
	}
	fmt.Fprintf(r.out, "=> %s\n", v)
}

// command handles REPL meta-commands.
func (r *repl) command(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "REPL Commands:")
		fmt.Fprintln(r.out, "  :help, :h, :?     Show this help")
		fmt.Fprintln(r.out, "  :vars             List top-level variables")
		fmt.Fprintln(r.out, "  :funcs            List user functions")
		fmt.Fprintln(r.out, "  :doc NAME         Describe a builtin")
		fmt.Fprintln(r.out, "  :obj FILE         Write the meshes so far as OBJ")
		fmt.Fprintln(r.out, "  :reset            Discard all session state")
		fmt.Fprintln(r.out, "  exit, quit        Exit REPL")
	case ":vars":
		fmt.Fprintln(r.out, strings.Join(r.session.Variables(), " "))
	case ":funcs":
		fmt.Fprintln(r.out, strings.Join(r.session.Functions(), " "))
	case ":doc":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "Usage: :doc NAME")
			return
		}
		f, ok := vm.Builtins().Lookup(fields[1])
		if !ok {
			fmt.Fprintf(r.out, "No builtin named %s\n", fields[1])
			return
		}
		fmt.Fprintln(r.out, f.Signature())
		if f.Description != "" {
			fmt.Fprintln(r.out, "  "+f.Description)
		}
	case ":obj":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "Usage: :obj FILE")
			return
		}
		result := r.session.Result()
		if err := writeTo(fields[1], func(w io.Writer) error { return writeOBJ(w, result) }); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "Wrote %d meshes to %s\n", len(result.Meshes), fields[1])
	case ":reset":
		r.session.Reset()
		fmt.Fprintln(r.out, "Session reset")
	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}
