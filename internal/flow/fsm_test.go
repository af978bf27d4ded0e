package flow

import "testing"

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine()
	steps := []struct {
		action Action
		next   Stage
	}{
		{action: ActionSelectSuppliers, next: StageProductSelection},
		{action: ActionSelectProducts, next: StageRankingSelection},
		{action: ActionSelectRanking, next: StageBudgetConfirmation},
		{action: ActionConfirmBudget, next: StageDone},
	}

	for _, step := range steps {
		tr := m.Apply(step.action)
		if tr.Redirected {
			t.Fatalf("%s: unexpected redirect (%s)", step.action, tr.Note)
		}
		if tr.Next != step.next {
			t.Fatalf("%s: next = %s, want %s", step.action, tr.Next, step.next)
		}
	}
}

func TestMachine_BudgetBeforeSuppliersRedirects(t *testing.T) {
	m := NewMachine()

	tr := m.Apply(ActionConfirmBudget)
	if !tr.Redirected {
		t.Fatal("Expected out-of-order budget request to be redirected")
	}
	if tr.Next != StageSupplierSelection {
		t.Errorf("Redirect target = %s, want supplier selection", tr.Next)
	}
	if m.Stage() != StageSupplierSelection {
		t.Errorf("Machine moved to %s on a rejected action", m.Stage())
	}
}

func TestMachine_RewindRedoesEarlierStage(t *testing.T) {
	m := NewMachine()
	m.Apply(ActionSelectSuppliers)
	m.Apply(ActionSelectProducts)

	// Going back to supplier selection is allowed and completes it again.
	tr := m.Apply(ActionSelectSuppliers)
	if tr.Redirected {
		t.Fatalf("Rewind must not redirect: %s", tr.Note)
	}
	if tr.Next != StageProductSelection {
		t.Errorf("After redoing supplier selection, next = %s, want product selection", tr.Next)
	}
}

func TestMachine_HelpAndQuit(t *testing.T) {
	m := NewMachine()

	if tr := m.Apply(ActionHelp); tr.Next != StageSupplierSelection || tr.Redirected {
		t.Errorf("Help must not move the machine: %+v", tr)
	}

	if tr := m.Apply(ActionQuit); tr.Next != StageDone {
		t.Errorf("Quit must finish the wizard, got %s", tr.Next)
	}
	if tr := m.Apply(ActionSelectSuppliers); !tr.Redirected {
		t.Error("Completed wizard must reject further actions")
	}
}

func TestMachine_Reset(t *testing.T) {
	m := NewMachine()
	m.Apply(ActionSelectSuppliers)
	m.Reset()
	if m.Stage() != StageSupplierSelection {
		t.Errorf("Reset left machine at %s", m.Stage())
	}
}
