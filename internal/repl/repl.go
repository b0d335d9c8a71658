// Package repl implements an interactive, line-at-a-time typechecking
// session: each declaration entered is elaborated against an
// accumulating environment and its inferred scheme is printed back.
// It never evaluates — there is no interpreter or code generator here,
// only the checker pipeline `internal/build` runs per file.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/kindcheck"
	"github.com/ditto-lang/ditto/internal/parser"
	"github.com/ditto-lang/ditto/internal/typecheck"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

const sessionModuleName = "Repl"

// REPL holds the accumulating environment a session's declarations are
// checked against. Every accepted declaration widens kindEnv/typeEnv
// for the rest of the session; a rejected one leaves them untouched.
type REPL struct {
	kindEnv *kindcheck.Env
	typeEnv *typecheck.Env
	module  ast.ModuleName
	history []string
}

// New starts a session with an empty environment.
func New() *REPL {
	return &REPL{
		kindEnv: newSessionKindEnv(),
		typeEnv: newSessionTypeEnv(),
		module:  ast.ModuleName{Segments: []ast.ProperName{{Value: sessionModuleName}}},
	}
}

func newSessionKindEnv() *kindcheck.Env { return kindcheck.NewEnv() }
func newSessionTypeEnv() *typecheck.Env { return typecheck.NewEnv() }

func (r *REPL) getPrompt() string { return "ditto> " }

// Start begins the read-eval-print loop, reading from in and writing
// prompts/results/history to out. in is accepted for interface
// symmetry with a scripted session; liner drives its own terminal I/O.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".ditto_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":history", ":reset"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		input, err := line.Prompt(r.getPrompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %s\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.HandleCommand(input, out) {
				break
			}
			continue
		}

		r.ProcessDeclaration(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}
