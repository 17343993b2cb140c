// Command tclbind-shell is a small interactive shell over the bridge:
// scripts from a file, a -c one-liner, or a REPL when stdin is a terminal.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tclbind/tclbind"
)

func main() {
	var command string

	cmd := &cobra.Command{
		Use:   "tclbind-shell [flags] [script-file]",
		Short: "Interactive shell for the tclbind bridge",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			interp := tclbind.NewPermanent()
			defer interp.Delete()

			if err := loadInitScript(interp); err != nil {
				return err
			}
			switch {
			case command != "":
				return runScript(interp, command)
			case len(args) == 1:
				src, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				return runScript(interp, string(src))
			case term.IsTerminal(int(os.Stdin.Fd())):
				runREPL(interp)
				return nil
			default:
				src, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				return runScript(interp, string(src))
			}
		},
	}

	cmd.Flags().StringVarP(&command, "command", "c", "", "evaluate this script and exit")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadInitScript evaluates the script named by TCLBIND_LIBRARY, if set.
func loadInitScript(interp *tclbind.Interp) error {
	path := os.Getenv("TCLBIND_LIBRARY")
	if path == "" {
		return nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("init script: %w", err)
	}
	if _, err := interp.EvalString(string(src)); err != nil {
		return fmt.Errorf("init script %s: %w", path, err)
	}
	return nil
}

func runScript(interp *tclbind.Interp, src string) error {
	out, err := interp.EvalString(src)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Println(out)
	}
	return nil
}

func runREPL(interp *tclbind.Interp) {
	scanner := bufio.NewScanner(os.Stdin)
	var buffer string

	for {
		if buffer == "" {
			fmt.Print("% ")
		} else {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if buffer != "" {
			buffer += "\n" + line
		} else {
			buffer = line
		}
		if incomplete(buffer) {
			continue
		}
		out, err := interp.EvalString(buffer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		} else if out != "" {
			fmt.Println(out)
		}
		buffer = ""
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
	}
}

// incomplete reports whether the buffered input still has an open brace,
// bracket, or quote, so the REPL should keep reading lines.
func incomplete(s string) bool {
	braces, brackets := 0, 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		}
	}
	return braces > 0 || brackets > 0 || inQuote
}
