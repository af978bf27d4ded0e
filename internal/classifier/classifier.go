package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/service"
)

// splitSeed makes the 80/20 holdout split reproducible across runs.
const splitSeed = 42

// minCohortSize is the smallest cohort that still fills five rating
// buckets and leaves a holdout row.
const minCohortSize = 5

// Classifier trains, persists and applies the supplier quality model.
// The model and scaler artifacts are only valid as a pair.
type Classifier struct {
	store service.Storage
	now   func() time.Time
	cfg   config.ModelConfig
}

// New creates a classifier backed by the given artifact directory and
// classification-result store.
func New(cfg config.ModelConfig, store service.Storage) *Classifier {
	return &Classifier{cfg: cfg, store: store, now: time.Now}
}

// Train fits the model on the cohort, logs the holdout error, persists the
// artifact pair and the classified cohort. Training always persists; the
// holdout MAE is informational, never a gate.
func (c *Classifier) Train(ctx context.Context, cohort []model.SupplierFeatures) (*service.TrainReport, error) {
	if len(cohort) < minCohortSize {
		return nil, fmt.Errorf("%w: %d suppliers", common.ErrCohortTooSmall, len(cohort))
	}

	scores := CompositeScores(cohort)
	ratings := RatingsFromScores(scores)

	rows := make([][]float64, len(cohort))
	targets := make([]float64, len(cohort))
	for i, s := range cohort {
		rows[i] = s.Vector()
		targets[i] = float64(ratings[i])
	}

	trainIdx, testIdx := holdoutSplit(len(cohort))

	scaler := &StandardScaler{}
	if err := scaler.Fit(pick(rows, trainIdx)); err != nil {
		return nil, fmt.Errorf("failed to fit scaler: %w", err)
	}
	scaledTrain, err := scaler.TransformAll(pick(rows, trainIdx))
	if err != nil {
		return nil, err
	}

	reg := &RidgeRegression{}
	if err := reg.Fit(scaledTrain, pick1(targets, trainIdx)); err != nil {
		return nil, fmt.Errorf("failed to fit regression: %w", err)
	}

	mae, err := c.holdoutMAE(reg, scaler, rows, targets, testIdx)
	if err != nil {
		return nil, err
	}

	executedAt := c.now().Truncate(time.Second)
	if err := c.saveArtifacts(reg, scaler, executedAt); err != nil {
		return nil, err
	}

	classified := make([]model.ClassifiedSupplier, len(cohort))
	distribution := make(map[string]int)
	for i, s := range cohort {
		label := model.RatingLabel(ratings[i])
		classified[i] = model.ClassifiedSupplier{
			Features:       s,
			Score:          scores[i],
			Rating:         ratings[i],
			Classification: label,
			ExecutedAt:     executedAt,
		}
		distribution[label]++
	}

	if err := c.store.SaveClassifiedSuppliers(ctx, classified); err != nil {
		return nil, fmt.Errorf("failed to persist classified cohort: %w", err)
	}

	common.LogInfo("supplier classifier trained", common.Fields{
		"cohort_size": len(cohort),
		"holdout_mae": fmt.Sprintf("%.3f", mae),
		"executed_at": executedAt.Format(time.RFC3339),
	})

	return &service.TrainReport{
		ExecutedAt:  executedAt,
		HoldoutMAE:  mae,
		CohortSize:  len(cohort),
		Distributed: distribution,
	}, nil
}

// Classify applies the persisted model to a forward cohort with no ground
// truth. Returns ErrModelNotTrained when either artifact is missing.
func (c *Classifier) Classify(ctx context.Context, cohort []model.SupplierFeatures) ([]model.ClassifiedSupplier, error) {
	reg, scaler, err := c.loadArtifacts()
	if err != nil {
		return nil, err
	}

	executedAt := c.now().Truncate(time.Second)
	classified := make([]model.ClassifiedSupplier, len(cohort))
	for i, s := range cohort {
		scaled, err := scaler.Transform(s.Vector())
		if err != nil {
			return nil, err
		}
		prediction, err := reg.Predict(scaled)
		if err != nil {
			return nil, err
		}
		rating := clampRating(prediction)
		classified[i] = model.ClassifiedSupplier{
			Features:       s,
			Score:          prediction,
			Rating:         rating,
			Classification: model.RatingLabel(rating),
			ExecutedAt:     executedAt,
		}
	}

	if len(classified) > 0 {
		if err := c.store.SaveClassifiedSuppliers(ctx, classified); err != nil {
			return nil, fmt.Errorf("failed to persist classified cohort: %w", err)
		}
	}

	common.LogInfo("forward cohort classified", common.Fields{
		"cohort_size": len(cohort),
		"executed_at": executedAt.Format(time.RFC3339),
	})
	return classified, nil
}

func (c *Classifier) holdoutMAE(reg *RidgeRegression, scaler *StandardScaler, rows [][]float64, targets []float64, testIdx []int) (float64, error) {
	if len(testIdx) == 0 {
		return 0, nil
	}
	var sum float64
	for _, i := range testIdx {
		scaled, err := scaler.Transform(rows[i])
		if err != nil {
			return 0, err
		}
		prediction, err := reg.Predict(scaled)
		if err != nil {
			return 0, err
		}
		sum += math.Abs(float64(clampRating(prediction)) - targets[i])
	}
	return sum / float64(len(testIdx)), nil
}

// holdoutSplit shuffles indices deterministically and reserves 20% for the
// holdout check.
func holdoutSplit(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(splitSeed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTest := n / 5
	return idx[nTest:], idx[:nTest]
}

func pick(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func pick1(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

type modelArtifact struct {
	TrainedAt time.Time       `json:"trained_at"`
	Model     RidgeRegression `json:"model"`
}

type scalerArtifact struct {
	TrainedAt time.Time      `json:"trained_at"`
	Scaler    StandardScaler `json:"scaler"`
}

func (c *Classifier) saveArtifacts(reg *RidgeRegression, scaler *StandardScaler, trainedAt time.Time) error {
	if err := os.MkdirAll(c.cfg.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := writeJSON(c.cfg.ModelPath(), modelArtifact{TrainedAt: trainedAt, Model: *reg}); err != nil {
		return err
	}
	return writeJSON(c.cfg.ScalerPath(), scalerArtifact{TrainedAt: trainedAt, Scaler: *scaler})
}

// loadArtifacts loads the model/scaler pair. A missing file on either side
// means "never trained"; a file that fails to deserialize is unrecoverable
// short of retraining and propagates as a hard failure.
func (c *Classifier) loadArtifacts() (*RidgeRegression, *StandardScaler, error) {
	var ma modelArtifact
	if err := readJSON(c.cfg.ModelPath(), &ma); err != nil {
		return nil, nil, err
	}
	var sa scalerArtifact
	if err := readJSON(c.cfg.ScalerPath(), &sa); err != nil {
		return nil, nil, err
	}
	return &ma.Model, &sa.Scaler, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", common.ErrModelNotTrained, filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrModelCorrupted, filepath.Base(path), err)
	}
	return nil
}
