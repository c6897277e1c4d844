package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/pawsong/js-interp/interpreter"
	"github.com/pawsong/js-interp/parser"
	"github.com/pawsong/js-interp/runtime"
)

// consoleShim builds console on top of the registered _print/_printErr
// natives; the interpreter core ships no I/O of its own.
const consoleShim = `var console = {
	log: function() { _print(Array.prototype.slice.call(arguments).join(" ")); },
	info: function() { _print(Array.prototype.slice.call(arguments).join(" ")); },
	warn: function() { _printErr(Array.prototype.slice.call(arguments).join(" ")); },
	error: function() { _printErr(Array.prototype.slice.call(arguments).join(" ")); }
};
`

const historyFile = ".jsi_history"

func main() {
	evalCode := flag.String("e", "", "evaluate inline JavaScript code")
	dumpAST := flag.Bool("ast", false, "dump the AST as JSON")
	maxSteps := flag.Int("steps", 0, "abort after this many steps (0 = unlimited)")
	flag.Parse()

	var source string
	switch {
	case *evalCode != "":
		source = *evalCode
	case flag.NArg() > 0:
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	case *dumpAST:
		fmt.Fprintf(os.Stderr, "-ast needs a file or -e\n")
		os.Exit(1)
	default:
		os.Exit(repl())
	}

	if *dumpAST {
		program, errs := parser.New(source).ParseProgram()
		if len(errs) > 0 {
			for _, err := range errs {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(program); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding AST: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ip, err := interpreter.New(consoleShim+source, registerNatives)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := drive(ip, *maxSteps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !runtime.IsUndefined(ip.Value) {
		fmt.Println(ip.ToString(ip.Value))
	}
}

// drive runs the interpreter step by step so a runaway script can be cut off.
func drive(ip *interpreter.Interpreter, maxSteps int) error {
	steps := 0
	for {
		more, err := ip.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if ip.Paused() {
			return fmt.Errorf("script blocked on an async call with no host to resume it")
		}
		steps++
		if maxSteps > 0 && steps >= maxSteps {
			return fmt.Errorf("aborted after %d steps", steps)
		}
	}
}

func registerNatives(ip *interpreter.Interpreter, global *runtime.Object) {
	print := ip.NewNativeFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) > 0 {
			fmt.Println(r.ToString(args[0]))
		} else {
			fmt.Println()
		}
		return r.Undefined, nil
	}, 1)
	ip.SetGlobal("_print", print)

	printErr := ip.NewNativeFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) > 0 {
			fmt.Fprintln(os.Stderr, r.ToString(args[0]))
		} else {
			fmt.Fprintln(os.Stderr)
		}
		return r.Undefined, nil
	}, 1)
	ip.SetGlobal("_printErr", printErr)
}

func repl() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip, err := interpreter.New(consoleShim, registerNatives)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := drive(ip, 0); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if err := ip.AppendCode(code); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := drive(ip, 0); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if !runtime.IsUndefined(ip.Value) {
			fmt.Println(ip.ToString(ip.Value))
		}
	}
}

// readStatement collects lines until they parse, so multi-line constructs
// work at the prompt.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := "js> "
		if b.Len() > 0 {
			prompt = "... "
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, errs := parser.New(src).ParseProgram()
		if len(errs) == 0 {
			return src, true
		}
		// errors at end of input mean an unterminated construct: keep the
		// prompt open for more lines
		if strings.Contains(errs[len(errs)-1].Error(), `got ""`) {
			continue
		}
		return src, true
	}
}
