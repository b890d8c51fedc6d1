// Command cratesolve exposes the solver core over a small CLI surface
// (spec.md S6). Workspace discovery, process invocation, and every other
// peripheral concern the original repository bundled around its solver are
// explicitly out of scope (spec.md S1); this binary wires exactly the
// solve-versions subcommand.
package main

import (
	"os"
)

func main() {
	commands := []command{
		&solveVersionsCommand{},
	}
	os.Exit(dispatch(commands, os.Stdout, os.Stderr, os.Args))
}
