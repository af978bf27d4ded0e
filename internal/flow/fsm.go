// Package flow drives the multi-stage procurement wizard as an explicit
// finite state machine. User text is mapped to a typed action by an intent
// oracle; the machine accepts or rejects the suggested transition.
package flow

import "fmt"

// Stage is a named wizard state.
type Stage int

// Wizard stages in pipeline order.
const (
	StageSupplierSelection Stage = iota
	StageProductSelection
	StageRankingSelection
	StageBudgetConfirmation
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageSupplierSelection:
		return "supplier_selection"
	case StageProductSelection:
		return "product_selection"
	case StageRankingSelection:
		return "ranking_selection"
	case StageBudgetConfirmation:
		return "budget_confirmation"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Action is a typed stage request. It replaces free-text command parsing
// everywhere except the chat-text ingress, where the oracle produces one.
type Action int

// Wizard actions.
const (
	ActionNone Action = iota
	ActionSelectSuppliers
	ActionSelectProducts
	ActionSelectRanking
	ActionConfirmBudget
	ActionHelp
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionSelectSuppliers:
		return "select_suppliers"
	case ActionSelectProducts:
		return "select_products"
	case ActionSelectRanking:
		return "select_ranking"
	case ActionConfirmBudget:
		return "confirm_budget"
	case ActionHelp:
		return "help"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// requiredStage is the stage at which each pipeline action is valid.
func requiredStage(a Action) (Stage, bool) {
	switch a {
	case ActionSelectSuppliers:
		return StageSupplierSelection, true
	case ActionSelectProducts:
		return StageProductSelection, true
	case ActionSelectRanking:
		return StageRankingSelection, true
	case ActionConfirmBudget:
		return StageBudgetConfirmation, true
	default:
		return 0, false
	}
}

// Transition is the outcome of applying an action to the machine.
type Transition struct {
	Note       string
	From       Stage
	Next       Stage
	Redirected bool
}

// Machine is the wizard state machine. It starts at supplier selection.
type Machine struct {
	stage Stage
}

// NewMachine creates a machine at the initial stage.
func NewMachine() *Machine {
	return &Machine{stage: StageSupplierSelection}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	return m.stage
}

// Apply validates an action against the current stage and advances.
//
// Rules: help and quit never move the machine. An action for the current
// stage advances to the next one. An action for an earlier stage rewinds
// there and completes it, which lets the user redo a selection. An action
// for a later stage is rejected and the machine redirects the user back to
// the current stage, so asking for a budget before choosing suppliers
// lands on supplier selection.
func (m *Machine) Apply(action Action) Transition {
	t := Transition{From: m.stage, Next: m.stage}

	switch action {
	case ActionHelp:
		t.Note = "help requested"
		return t
	case ActionQuit:
		m.stage = StageDone
		t.Next = StageDone
		return t
	}

	required, ok := requiredStage(action)
	if !ok {
		t.Redirected = true
		t.Note = fmt.Sprintf("action %s not recognized at stage %s", action, m.stage)
		return t
	}

	if m.stage == StageDone {
		t.Redirected = true
		t.Note = "wizard already completed"
		return t
	}

	if required > m.stage {
		t.Redirected = true
		t.Next = m.stage
		t.Note = fmt.Sprintf("%s requires completing %s first", action, m.stage)
		return t
	}

	// On-stage or rewind: the action completes its own stage.
	m.stage = required + 1
	t.Next = m.stage
	return t
}

// Reset returns the machine to supplier selection.
func (m *Machine) Reset() {
	m.stage = StageSupplierSelection
}
