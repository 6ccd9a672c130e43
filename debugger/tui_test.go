package debugger

import (
	"strings"
	"testing"

	"github.com/quietcore/rvm8/internal/assembler"
	"github.com/quietcore/rvm8/internal/machine"
)

func newTestDebugger(t *testing.T, src string) *Debugger {
	t.Helper()
	prog, err := assembler.Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	vm := machine.NewVM(machine.MinMemorySize)
	if trap := vm.Load(prog.Image, uint32(prog.Entry)); trap != nil {
		t.Fatalf("load: %v", trap)
	}
	return New(vm)
}

func TestDebuggerStepExecutesOneInstruction(t *testing.T) {
	dbg := newTestDebugger(t, "Ldr r0, #10\n")
	dbg.Step()
	if dbg.Halted {
		t.Fatalf("unexpected halt: %v", dbg.LastTrap)
	}
	if got := dbg.VM.Regs[machine.R0]; got != 10 {
		t.Errorf("R0 = %d, want 10", got)
	}
}

func TestDebuggerStepHaltsOnTrap(t *testing.T) {
	dbg := newTestDebugger(t, "Div r0, r1, #0\n")
	dbg.Step()
	if !dbg.Halted {
		t.Fatal("expected halt after a trapping step")
	}
	if dbg.LastTrap == nil || dbg.LastTrap.Kind != machine.DivisionByZero {
		t.Errorf("LastTrap = %v, want DivisionByZero", dbg.LastTrap)
	}

	// Stepping again after halting must be a no-op, not a second execution.
	trapBefore := dbg.LastTrap
	dbg.Step()
	if dbg.LastTrap != trapBefore {
		t.Error("Step after halt mutated LastTrap")
	}
}

func TestDebuggerRunStopsAtBreakpoint(t *testing.T) {
	dbg := newTestDebugger(t, "Nop\nNop\nNop\n")
	dbg.Breakpoints[4] = true

	dbg.Run(100)

	if dbg.Halted {
		t.Fatalf("unexpected halt: %v", dbg.LastTrap)
	}
	if got := dbg.VM.Regs[machine.PC]; got != 4 {
		t.Errorf("PC = %d, want 4 (stopped at breakpoint before executing it)", got)
	}
}

func TestDebuggerRunBoundedByMaxSteps(t *testing.T) {
	dbg := newTestDebugger(t, "Nop\nNop\nNop\n")

	dbg.Run(2)

	if dbg.Halted {
		t.Fatalf("unexpected halt: %v", dbg.LastTrap)
	}
	if got := dbg.VM.Regs[machine.PC]; got != 8 {
		t.Errorf("PC = %d, want 8 after two bounded steps", got)
	}
}

func TestDebuggerRunStopsOnTrap(t *testing.T) {
	dbg := newTestDebugger(t, "Div r0, r1, #0\n")
	dbg.Run(100)
	if !dbg.Halted {
		t.Fatal("expected Run to halt on a trap")
	}
}

func TestTUIExecuteBreakSetsBreakpoint(t *testing.T) {
	dbg := newTestDebugger(t, "Nop\n")
	tui := NewTUI(dbg)

	tui.execute("break 0x10")

	if !tui.Debugger.Breakpoints[0x10] {
		t.Error("expected a breakpoint at 0x10")
	}
	if out := tui.OutputView.GetText(true); !strings.Contains(out, "breakpoint set") {
		t.Errorf("output = %q, want a breakpoint-set message", out)
	}
}

func TestTUIExecuteBreakRejectsMissingAddress(t *testing.T) {
	dbg := newTestDebugger(t, "Nop\n")
	tui := NewTUI(dbg)

	tui.execute("break")

	if len(tui.Debugger.Breakpoints) != 0 {
		t.Error("expected no breakpoint to be set")
	}
	if out := tui.OutputView.GetText(true); !strings.Contains(out, "usage") {
		t.Errorf("output = %q, want a usage message", out)
	}
}

func TestTUIExecuteMemDumpsBytes(t *testing.T) {
	dbg := newTestDebugger(t, "Nop\n")
	tui := NewTUI(dbg)

	tui.execute("mem 0 4")

	if out := tui.MemoryView.GetText(true); strings.TrimSpace(out) == "" {
		t.Error("expected the memory view to be populated")
	}
}

func TestTUIExecuteRegsRefreshesRegisterView(t *testing.T) {
	dbg := newTestDebugger(t, "Ldr r0, #10\n")
	dbg.Step()
	tui := NewTUI(dbg)

	tui.execute("regs")

	out := tui.RegisterView.GetText(true)
	if !strings.Contains(out, "r0") {
		t.Errorf("register view = %q, want it to list r0", out)
	}
}

func TestTUIExecuteUnknownCommand(t *testing.T) {
	dbg := newTestDebugger(t, "Nop\n")
	tui := NewTUI(dbg)

	tui.execute("frobnicate")

	if out := tui.OutputView.GetText(true); !strings.Contains(out, "unknown command") {
		t.Errorf("output = %q, want an unknown-command message", out)
	}
}

func TestTUIExecuteQuitDoesNotPanic(t *testing.T) {
	dbg := newTestDebugger(t, "Nop\n")
	tui := NewTUI(dbg)

	// App.Stop is a no-op when the event loop was never started; this only
	// guards against execute's quit branch panicking before reaching it.
	tui.execute("quit")
}

func TestParseAddr(t *testing.T) {
	cases := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0x10", 0x10, false},
		{"10", 0x10, false},
		{"0X1F", 0x1f, false},
		{"zz", 0, true},
		{"", 0, true},
	}

	for _, c := range cases {
		got, err := parseAddr(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseAddr(%q): expected an error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAddr(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseAddr(%q) = 0x%x, want 0x%x", c.in, got, c.want)
		}
	}
}
