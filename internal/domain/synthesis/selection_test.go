package synthesis

import (
	"testing"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
)

func targetIDs(ts []*registry.TargetCode) []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

func TestSelection_AddKeepsOrderAndDedupes(t *testing.T) {
	snap := testSnapshot(t)
	t1, t2, t3 := mustTarget(t, snap, "icd-001"), mustTarget(t, snap, "icd-002"), mustTarget(t, snap, "icd-003")

	sel := NewSelection(nil, t2, t1, t2, nil)
	if !sel.AddTarget(t3) {
		t.Error("expected t3 to be added")
	}
	if sel.AddTarget(t1) {
		t.Error("expected duplicate t1 to be rejected")
	}
	got := targetIDs(sel.Targets())
	want := []string{"icd-002", "icd-001", "icd-003"}
	if len(got) != len(want) {
		t.Fatalf("targets = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("targets = %v, want %v", got, want)
			break
		}
	}
}

func TestSelection_RemoveAndToggle(t *testing.T) {
	snap := testSnapshot(t)
	t1, t2 := mustTarget(t, snap, "icd-001"), mustTarget(t, snap, "icd-002")
	sel := NewSelection(mustSource(t, snap, "nam-001"), t1, t2)

	if !sel.RemoveTarget("icd-001") {
		t.Error("expected icd-001 to be removed")
	}
	if sel.RemoveTarget("icd-001") {
		t.Error("second remove should report false")
	}
	if sel.ToggleTarget(t2) {
		t.Error("toggling a selected target should deselect it")
	}
	if !sel.ToggleTarget(t1) {
		t.Error("toggling an absent target should select it")
	}
	if ids := targetIDs(sel.Targets()); len(ids) != 1 || ids[0] != "icd-001" {
		t.Errorf("targets = %v", ids)
	}
}

func TestSelection_TargetsIsACopy(t *testing.T) {
	snap := testSnapshot(t)
	sel := NewSelection(nil, mustTarget(t, snap, "icd-001"))
	ts := sel.Targets()
	ts[0] = mustTarget(t, snap, "icd-002")
	if sel.Targets()[0].ID != "icd-001" {
		t.Error("mutating the returned slice changed the selection")
	}
}

func TestSelection_Clear(t *testing.T) {
	snap := testSnapshot(t)
	sel := NewSelection(mustSource(t, snap, "nam-001"), mustTarget(t, snap, "icd-001"))
	if sel.IsEmpty() {
		t.Fatal("selection should not be empty")
	}
	sel.Clear()
	if !sel.IsEmpty() || sel.Source() != nil {
		t.Error("expected empty selection after Clear")
	}
}

func TestOptional(t *testing.T) {
	none := None[int]()
	if none.IsSome() {
		t.Error("None should not be Some")
	}
	if v := none.OrElse(7); v != 7 {
		t.Errorf("OrElse = %d", v)
	}
	some := Some(3)
	if v, ok := some.Get(); !ok || v != 3 {
		t.Errorf("Get = %d, %v", v, ok)
	}
	if some.OrElse(7) != 3 {
		t.Error("OrElse should return the held value")
	}
}
