package assembler

import (
	"testing"

	"github.com/quietcore/rvm8/internal/machine"
)

func TestAssembleArithmeticAndStack(t *testing.T) {
	src := "Ldr r0, #10\n" +
		"Push r0\n" +
		"Ldr r0, #1\n" +
		"Push r0\n" +
		"Pop r1\n" +
		"Pop r2\n" +
		"Add r0, r1, r2\n" +
		"Push r0\n"

	prog, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if prog.Entry != 0 {
		t.Errorf("entry = %d, want 0", prog.Entry)
	}
	if len(prog.Image) != 8*4 {
		t.Fatalf("image length = %d, want 32", len(prog.Image))
	}

	vm := machine.NewVM(machine.MinMemorySize)
	if trap := vm.Load(prog.Image, uint32(prog.Entry)); trap != nil {
		t.Fatalf("Load: %v", trap)
	}
	for i := 0; i < 8; i++ {
		if _, trap := vm.Step(); trap != nil {
			t.Fatalf("step %d: %v", i, trap)
		}
	}
	if vm.Regs[machine.R0] != 11 {
		t.Errorf("R0 = %d, want 11", vm.Regs[machine.R0])
	}
}

// Property 5: macro hygiene.
func TestMacroExpandsToExactlyItsBody(t *testing.T) {
	src := ".macro inc %1\n" +
		"Add %1,%1,#1\n" +
		".endmacro\n" +
		"inc r0\n"

	prog, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(prog.Image) != 4 {
		t.Fatalf("image length = %d, want 4 (exactly one instruction)", len(prog.Image))
	}

	want := machine.Encode(machine.NewArith(machine.InstAdd, machine.R0, machine.R0, machine.ImmOperand(1)))
	got := uint32(prog.Image[0]) | uint32(prog.Image[1])<<8 | uint32(prog.Image[2])<<16 | uint32(prog.Image[3])<<24
	if got != want {
		t.Errorf("encoded word = 0x%08x, want 0x%08x", got, want)
	}
}

// Property 4: entry semantics.
func TestEntryDirectiveResolvesToLabelOffset(t *testing.T) {
	src := "Nop\n" +
		"Nop\n" +
		"_main:\n" +
		"Nop\n" +
		".entry _main\n"

	prog, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if prog.Entry != 8 {
		t.Errorf("entry = %d, want 8 (4 * N for N=2)", prog.Entry)
	}
}

func TestMacroCycleIsRejected(t *testing.T) {
	src := ".macro loopy\n" +
		"loopy\n" +
		".endmacro\n" +
		"loopy\n"

	_, err := Assemble(src)
	if err == nil {
		t.Fatal("expected a macro-cycle error, got nil")
	}
}

func TestMissingCommaIsFatal(t *testing.T) {
	src := "Add r0 r1, r2\n"
	_, err := Assemble(src)
	if err == nil {
		t.Fatal("expected an error for a missing comma")
	}
}

func TestLexicalErrorsAreCollected(t *testing.T) {
	src := "Push #ffffffffffffffff\n" +
		"Push #x\n"
	_, err := Assemble(src)
	if err == nil {
		t.Fatal("expected a lexical error")
	}
	fpErr, ok := err.(*FirstPassError)
	if !ok {
		t.Fatalf("expected *FirstPassError, got %T: %v", err, err)
	}
	if len(fpErr.Errors) != 2 {
		t.Errorf("collected %d errors, want 2", len(fpErr.Errors))
	}
}
