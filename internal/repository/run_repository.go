package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/campusforge/timetable-engine/internal/domain"
	"github.com/campusforge/timetable-engine/internal/engine"
	"github.com/campusforge/timetable-engine/internal/models"
)

// RunRepository persists and reloads engine.Result values, the generated-
// schedule analogue of the teacher's SemesterScheduleRepository.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts one completed run. snapshotLabel identifies which snapshot
// (department/semester) the run was evolved against.
func (r *RunRepository) Save(ctx context.Context, snapshotLabel string, result engine.Result) error {
	row, err := runRowFrom(snapshotLabel, result)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", result.RunID, err)
	}

	const query = `
		INSERT INTO runs (id, snapshot_label, status, fitness, hard_violations,
			soft_violations, generations, duration_seconds, genes, history,
			category_counts, category_penalty, created_at)
		VALUES (:id, :snapshot_label, :status, :fitness, :hard_violations,
			:soft_violations, :generations, :duration_seconds, :genes, :history,
			:category_counts, :category_penalty, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save run %s: %w", result.RunID, err)
	}
	return nil
}

// FindByID loads one persisted run row by ID.
func (r *RunRepository) FindByID(ctx context.Context, runID string) (models.RunRow, error) {
	const query = `SELECT id, snapshot_label, status, fitness, hard_violations,
		soft_violations, generations, duration_seconds, genes, history,
		category_counts, category_penalty, created_at FROM runs WHERE id = $1`

	var row models.RunRow
	if err := r.db.GetContext(ctx, &row, query, runID); err != nil {
		return models.RunRow{}, fmt.Errorf("find run %s: %w", runID, err)
	}
	return row, nil
}

func runRowFrom(snapshotLabel string, result engine.Result) (models.RunRow, error) {
	genesJSON, err := json.Marshal(result.Best.Genes)
	if err != nil {
		return models.RunRow{}, err
	}
	historyJSON, err := json.Marshal(result.History)
	if err != nil {
		return models.RunRow{}, err
	}
	countsJSON, err := json.Marshal(result.Best.Eval.CategoryCounts)
	if err != nil {
		return models.RunRow{}, err
	}
	penaltyJSON, err := json.Marshal(result.Best.Eval.CategoryPenalty)
	if err != nil {
		return models.RunRow{}, err
	}

	return models.RunRow{
		ID:              result.RunID,
		SnapshotLabel:   snapshotLabel,
		Status:          statusFor(result),
		Fitness:         result.Best.Eval.Fitness,
		HardViolations:  result.Best.Eval.HardViolations,
		SoftViolations:  result.Best.Eval.SoftViolations,
		Generations:     result.Generations,
		DurationSeconds: result.Duration.Seconds(),
		Genes:           types.JSONText(genesJSON),
		History:         types.JSONText(historyJSON),
		CategoryCounts:  types.JSONText(countsJSON),
		CategoryPenalty: types.JSONText(penaltyJSON),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func statusFor(result engine.Result) models.RunStatus {
	switch result.Termination {
	case engine.TerminationSuccess:
		return models.RunStatusSuccess
	case engine.TerminationCancelled:
		return models.RunStatusCancelled
	default:
		return models.RunStatusExhausted
	}
}

// Chromosome reconstructs a domain.Chromosome from a persisted RunRow, for
// callers that need to re-run validation or export against a stored result
// without holding the engine.Result in memory.
func (r *RunRepository) Chromosome(row models.RunRow) (domain.Chromosome, error) {
	return chromosomeFromRow(row)
}

func chromosomeFromRow(row models.RunRow) (domain.Chromosome, error) {
	var genes []domain.Gene
	if len(row.Genes) > 0 {
		if err := json.Unmarshal(row.Genes, &genes); err != nil {
			return domain.Chromosome{}, err
		}
	}
	var counts map[string]int
	if len(row.CategoryCounts) > 0 {
		if err := json.Unmarshal(row.CategoryCounts, &counts); err != nil {
			return domain.Chromosome{}, err
		}
	}
	var penalty map[string]float64
	if len(row.CategoryPenalty) > 0 {
		if err := json.Unmarshal(row.CategoryPenalty, &penalty); err != nil {
			return domain.Chromosome{}, err
		}
	}

	return domain.Chromosome{
		Genes: genes,
		Eval: domain.EvaluationResult{
			Fitness:         row.Fitness,
			HardViolations:  row.HardViolations,
			SoftViolations:  row.SoftViolations,
			CategoryCounts:  counts,
			CategoryPenalty: penalty,
		},
	}, nil
}
