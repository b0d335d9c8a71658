package repl

import (
	"fmt"
	"io"
)

// HandleCommand processes a ":"-prefixed command. It returns true if
// the session should end.
func (r *REPL) HandleCommand(input string, out io.Writer) bool {
	switch input {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case ":help", ":h":
		r.printHelp(out)
	case ":history":
		r.printHistory(out)
	case ":reset":
		r.kindEnv = newSessionKindEnv()
		r.typeEnv = newSessionTypeEnv()
		fmt.Fprintln(out, dim("environment cleared"))
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", yellow("warning"), input)
	}
	return false
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, "Enter a type or value declaration to check it, e.g.:")
	fmt.Fprintln(out, "  type Maybe(a) = Just(a) | Nothing;")
	fmt.Fprintln(out, "  five: Int = 5;")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  :help     show this message")
	fmt.Fprintln(out, "  :history  show entered declarations")
	fmt.Fprintln(out, "  :reset    clear the accumulated environment")
	fmt.Fprintln(out, "  :quit     exit")
}

func (r *REPL) printHistory(out io.Writer) {
	for i, h := range r.history {
		fmt.Fprintf(out, "%3d  %s\n", i+1, h)
	}
}
