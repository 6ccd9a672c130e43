// Command rvmasm assembles and runs rvm8 programs. It is the external
// collaborator around the core library: all file I/O, flag parsing, and
// diagnostic formatting live here, never in internal/*.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/quietcore/rvm8/config"
	"github.com/quietcore/rvm8/debugger"
	"github.com/quietcore/rvm8/internal/assembler"
	"github.com/quietcore/rvm8/internal/machine"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("rvmasm", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	trace := fs.Bool("trace", false, "print a step trace after the program halts")
	debugMode := fs.Bool("debug", false, "launch the interactive terminal debugger")
	maxCycles := fs.Uint64("max-cycles", 0, "override the configured maximum cycle count")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rvmasm [flags] <source.asm|->")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *maxCycles > 0 {
		cfg.Execution.MaxCycles = *maxCycles
	}

	src, err := readSource(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	prog, err := assembler.Assemble(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assemble:", err)
		return 1
	}

	vm := machine.NewVM(cfg.Execution.MemorySize)
	if trap := vm.Load(prog.Image, uint32(prog.Entry)); trap != nil {
		fmt.Fprintln(os.Stderr, "load:", trap)
		return 1
	}

	if *debugMode {
		tui := debugger.NewTUI(debugger.New(vm))
		if err := tui.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	tracer := (*machine.Tracer)(nil)
	if *trace || cfg.Execution.EnableTrace {
		tracer = &machine.Tracer{}
	}

	if trap := vm.Run(tracer, cfg.Execution.MaxCycles); trap != nil {
		printRegisters(os.Stdout, vm)
		printTrace(os.Stdout, tracer)
		fmt.Fprintln(os.Stderr, "trap:", trap)
		return 1
	}

	printRegisters(os.Stdout, vm)
	printTrace(os.Stdout, tracer)
	return 0
}

func readSource(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

func printRegisters(w io.Writer, vm *machine.VM) {
	for r := machine.R0; r.Valid(); r++ {
		fmt.Fprintf(w, "%-6s 0x%08x\n", r, vm.Regs[r])
	}
}

func printTrace(w io.Writer, tracer *machine.Tracer) {
	if tracer == nil {
		return
	}
	for _, e := range tracer.Entries {
		fmt.Fprintf(w, "pc=0x%08x %+v\n", e.PC, e.Instruction)
	}
}
