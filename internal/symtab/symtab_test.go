package symtab

import "testing"

func TestInsertIsIdempotent(t *testing.T) {
	table := New()
	id1 := table.Insert("_main", Label, nil, 1)
	id2 := table.Insert("_main", Label, nil, 5)

	if id1 != id2 {
		t.Fatalf("insert of same name returned different ids: %v != %v", id1, id2)
	}

	sym, ok := table.GetSymbol(id1)
	if !ok {
		t.Fatal("symbol not found")
	}
	if sym.Line != 1 {
		t.Errorf("second insert should not overwrite metadata: line = %d, want 1", sym.Line)
	}
}

func TestGetIDAfterInsert(t *testing.T) {
	table := New()
	id := table.Insert("loop", Label, nil, 3)

	got, ok := table.GetID("loop")
	if !ok || got != id {
		t.Fatalf("GetID(%q) = (%v, %v), want (%v, true)", "loop", got, ok, id)
	}
}

func TestUpdateMutatesValue(t *testing.T) {
	table := New()
	id := table.Insert("done", Label, nil, 2)

	table.SetValue(id, 0x20)

	sym, ok := table.GetSymbol(id)
	if !ok {
		t.Fatal("symbol not found")
	}
	if sym.Value == nil || *sym.Value != 0x20 {
		t.Errorf("value = %v, want 0x20", sym.Value)
	}
}

func TestUpdateOnMissingIDIsNoop(t *testing.T) {
	table := New()
	table.Update(ID(42), func(s *Symbol) { s.Line = 99 })
	// No panic, nothing to assert beyond survival.
}

func TestDistinctNamesGetDistinctIDs(t *testing.T) {
	table := New()
	a := table.Insert("a", Label, nil, 1)
	b := table.Insert("b", Label, nil, 1)
	if a == b {
		t.Errorf("distinct names got the same id: %v", a)
	}
}
