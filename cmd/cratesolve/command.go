package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// command mirrors the teacher's own subcommand dispatch shape
// (cmd/dep/main.go), narrowed to this CLI's single real subcommand. A
// third-party CLI framework was deliberately not introduced here: this is
// the teacher's own ambient idiom for the surface, not a concern it leaves
// unopinionated (see DESIGN.md).
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	Register(*flag.FlagSet)
	Run(stdout, stderr io.Writer, args []string) int
}

// dispatch finds the named command in commands and runs it, or prints
// usage and returns exit code 1 if no such command exists.
func dispatch(commands []command, stdout, stderr io.Writer, args []string) int {
	if len(args) < 2 {
		usage(commands, stderr)
		return 1
	}

	name := args[1]
	for _, cmd := range commands {
		if cmd.Name() != name {
			continue
		}
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		cmd.Register(fs)
		fs.Usage = func() {
			fmt.Fprintf(stderr, "Usage: cratesolve %s %s\n", name, cmd.Args())
		}
		if err := fs.Parse(args[2:]); err != nil {
			return 1
		}
		return cmd.Run(stdout, stderr, fs.Args())
	}

	fmt.Fprintf(stderr, "cratesolve: %s: no such command\n", name)
	usage(commands, stderr)
	return 1
}

func usage(commands []command, stderr io.Writer) {
	fmt.Fprintln(stderr, "cratesolve is a SemVer dependency version solver")
	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, "Usage: cratesolve <command> [flags]")
	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, "Commands:")
	w := tabwriter.NewWriter(stderr, 0, 4, 2, ' ', 0)
	for _, cmd := range commands {
		fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
	}
	w.Flush()
}

// stringSliceFlag accumulates repeated occurrences of one flag, e.g.
// "-p a -p b" -> []string{"a", "b"}, since flag.FlagSet has no native
// repeatable-flag type.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ",") }

func (s *stringSliceFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
