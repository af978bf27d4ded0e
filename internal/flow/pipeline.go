package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/service"
)

// Run statuses recorded in the session log.
const (
	RunStatusStarted   = "started"
	RunStatusCompleted = "completed"
	RunStatusAborted   = "aborted"
)

// Pipeline holds the wizard's classifier access policy and session log.
// It trains the model at most once per session: a missing model triggers
// one automatic training on the current cohort, and any later failure
// propagates instead of retraining in a loop.
type Pipeline struct {
	store      service.Storage
	classifier service.SupplierClassifier
	trained    bool
}

// NewPipeline wires the wizard pipeline.
func NewPipeline(store service.Storage, classifier service.SupplierClassifier) *Pipeline {
	return &Pipeline{store: store, classifier: classifier}
}

// ClassifiedCohort returns the latest classified supplier set, producing
// one if necessary. Resolution order: stored latest run, then a forward
// classification of the given cohort, then a single automatic training.
func (p *Pipeline) ClassifiedCohort(ctx context.Context, cohort []model.SupplierFeatures) ([]model.ClassifiedSupplier, error) {
	stored, err := p.store.LatestClassifiedSuppliers(ctx)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	classified, err := p.classifier.Classify(ctx, cohort)
	if err == nil {
		return classified, nil
	}
	if !errors.Is(err, common.ErrModelNotTrained) || p.trained {
		return nil, err
	}

	slog.Info("no trained model found, training on current cohort",
		"cohort_size", len(cohort))
	p.trained = true
	report, err := p.classifier.Train(ctx, cohort)
	if err != nil {
		return nil, fmt.Errorf("automatic training failed: %w", err)
	}
	slog.Info("automatic training complete",
		"cohort_size", report.CohortSize,
		"holdout_mae", fmt.Sprintf("%.3f", report.HoldoutMAE))

	return p.store.LatestClassifiedSuppliers(ctx)
}

// Session couples a state machine, an intent oracle and the persistent
// session log for one wizard run.
type Session struct {
	Machine *Machine
	store   service.Storage
	oracle  Oracle
	router  *KeywordRouter
	runID   int64
}

// NewSession creates a wizard session. A nil oracle means keyword routing
// only.
func NewSession(store service.Storage, oracle Oracle) *Session {
	return &Session{
		Machine: NewMachine(),
		store:   store,
		oracle:  oracle,
		router:  NewKeywordRouter(),
	}
}

// Start records the session in the run log.
func (s *Session) Start(ctx context.Context, userQuery string) error {
	id, err := s.store.InsertRun(ctx, userQuery)
	if err != nil {
		return fmt.Errorf("failed to record wizard session: %w", err)
	}
	s.runID = id
	return nil
}

// Route maps user text to an action, preferring the oracle and falling
// back to the keyword router when the oracle fails or is absent.
func (s *Session) Route(ctx context.Context, text string) (Action, string) {
	if s.oracle != nil {
		action, reason, err := s.oracle.Suggest(ctx, text)
		if err == nil {
			return action, reason
		}
		slog.Warn("intent oracle failed, using keyword router", "error", err)
	}
	action, reason, _ := s.router.Suggest(ctx, text)
	return action, reason
}

// Apply runs an action through the state machine.
func (s *Session) Apply(action Action) Transition {
	t := s.Machine.Apply(action)
	slog.Debug("wizard transition",
		"action", action.String(),
		"from", t.From.String(),
		"next", t.Next.String(),
		"redirected", t.Redirected)
	return t
}

// Finish updates the session log status.
func (s *Session) Finish(ctx context.Context, status string) error {
	if s.runID == 0 {
		return nil
	}
	return s.store.UpdateRunStatus(ctx, s.runID, status)
}
