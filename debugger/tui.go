// Package debugger is a thin, optional terminal front end over the VM's
// public Step/trap contract. It never reaches into machine internals the
// core doesn't already expose.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/quietcore/rvm8/internal/machine"
)

// Debugger wraps a VM and the program loaded into it, tracking breakpoints
// by instruction address.
type Debugger struct {
	VM          *machine.VM
	Breakpoints map[uint32]bool
	Halted      bool
	LastTrap    *machine.Trap
}

// New creates a Debugger over an already-loaded VM.
func New(vm *machine.VM) *Debugger {
	return &Debugger{VM: vm, Breakpoints: make(map[uint32]bool)}
}

// Step executes a single instruction, recording a trap as halted state.
func (d *Debugger) Step() {
	if d.Halted {
		return
	}
	if _, trap := d.VM.Step(); trap != nil {
		d.Halted = true
		d.LastTrap = trap
	}
}

// Run steps until a breakpoint or trap. maxSteps bounds runaway programs.
func (d *Debugger) Run(maxSteps uint64) {
	for steps := uint64(0); steps < maxSteps && !d.Halted; steps++ {
		if d.Breakpoints[d.VM.Regs[machine.PC]] && steps > 0 {
			return
		}
		d.Step()
	}
}

// TUI is the terminal interface over a Debugger, built on tview/tcell the
// way the rest of this codebase's lineage builds its interactive tooling.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	MemoryAddress uint32
}

// NewTUI builds the TUI layout and key bindings around dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{Debugger: dbg, App: tview.NewApplication()}
	t.initViews()
	t.buildLayout()
	return t
}

func (t *TUI) initViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ")
	t.CommandInput.SetBorder(true).SetTitle(" Command (step, run, break <addr>, regs, mem <addr> <len>, quit) ")
	t.CommandInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		t.execute(t.CommandInput.GetText())
		t.CommandInput.SetText("")
	})
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.MemoryView, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 3, false).
		AddItem(t.OutputView, 0, 2, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.App.SetRoot(root, true).SetFocus(t.CommandInput)
	t.refresh()
}

func (t *TUI) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "step", "s":
		t.Debugger.Step()
	case "run", "r":
		t.Debugger.Run(1_000_000)
	case "break", "b":
		if len(fields) < 2 {
			t.print("usage: break <addr>")
			return
		}
		addr, err := parseAddr(fields[1])
		if err != nil {
			t.print(err.Error())
			return
		}
		t.Debugger.Breakpoints[addr] = true
		t.print(fmt.Sprintf("breakpoint set at 0x%08x", addr))
	case "regs":
		// refresh() already renders registers; nothing else to do.
	case "mem", "m":
		if len(fields) < 3 {
			t.print("usage: mem <addr> <len>")
			return
		}
		addr, err := parseAddr(fields[1])
		if err != nil {
			t.print(err.Error())
			return
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			t.print(err.Error())
			return
		}
		t.dumpMemory(addr, n)
	case "quit", "q":
		t.App.Stop()
		return
	default:
		t.print(fmt.Sprintf("unknown command: %s", fields[0]))
	}

	if t.Debugger.Halted && t.Debugger.LastTrap != nil {
		t.print("trap: " + t.Debugger.LastTrap.Error())
	}
	t.refresh()
}

func (t *TUI) dumpMemory(addr uint32, n int) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		b, trap := t.Debugger.VM.Mem.ReadByte(addr + uint32(i))
		if trap != nil {
			t.print(trap.Error())
			return
		}
		fmt.Fprintf(&sb, "%02x ", b)
	}
	t.MemoryView.SetText(sb.String())
}

func (t *TUI) print(s string) {
	fmt.Fprintln(t.OutputView, s)
}

func (t *TUI) refresh() {
	vm := t.Debugger.VM
	var sb strings.Builder
	for r := machine.R0; r.Valid(); r++ {
		fmt.Fprintf(&sb, "%-6s 0x%08x\n", r, vm.Regs[r])
	}
	t.RegisterView.SetText(sb.String())
}

// Start runs the TUI event loop until the user quits.
func (t *TUI) Start() error {
	return t.App.Run()
}

func parseAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(v), nil
}
