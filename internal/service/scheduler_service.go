package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/domain"
	"github.com/campusforge/timetable-engine/internal/dto"
	"github.com/campusforge/timetable-engine/internal/engine"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/pkg/config"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/logger"
)

// snapshotLoader is the subset of SnapshotRepository the scheduler depends
// on, narrowed to an interface so tests can stub it without a database.
type snapshotLoader interface {
	Load(ctx context.Context, filter models.SnapshotFilter) (domain.Snapshot, error)
}

// runStore is the subset of RunRepository the scheduler depends on.
type runStore interface {
	Save(ctx context.Context, snapshotLabel string, result engine.Result) error
	FindByID(ctx context.Context, runID string) (models.RunRow, error)
	Chromosome(row models.RunRow) (domain.Chromosome, error)
}

// resultObserver is the subset of metrics.Metrics the scheduler depends on.
// A nil observer is valid: Run simply skips recording.
type resultObserver interface {
	ObserveResult(result engine.Result)
}

// SchedulerService is the orchestration seam between external callers and
// the engine package: it loads a Snapshot, drives one evolutionary run and
// persists the outcome, the way the teacher's ScheduleGeneratorService sits
// between its handlers and the teacher's in-service heuristic placer.
type SchedulerService struct {
	snapshots snapshotLoader
	runs      runStore
	metrics   resultObserver
	defaults  config.EngineConfig
	validate  *validator.Validate
	log       *zap.Logger
}

// NewSchedulerService constructs a SchedulerService. metrics may be nil.
func NewSchedulerService(snapshots snapshotLoader, runs runStore, metrics resultObserver, defaults config.EngineConfig, log *zap.Logger) *SchedulerService {
	return &SchedulerService{
		snapshots: snapshots,
		runs:      runs,
		metrics:   metrics,
		defaults:  defaults,
		validate:  validator.New(),
		log:       log,
	}
}

// Run loads the snapshot selected by filter, evolves a timetable against it
// and persists the result under req.SnapshotID, returning the response shape
// external callers see.
// A nil sink falls back to engine.NopProgressSink.
func (s *SchedulerService) Run(ctx context.Context, filter models.SnapshotFilter, req dto.RunRequest, sink engine.ProgressSink) (dto.RunResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.RunResponse{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	snapshot, err := s.snapshots.Load(ctx, filter)
	if err != nil {
		return dto.RunResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "loading snapshot failed")
	}

	engineConfig := s.engineConfigFrom(req)

	progressSink := sink
	if progressSink == nil {
		progressSink = engine.NopProgressSink{}
	}
	if s.defaults.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.defaults.RunTimeout)
		defer cancel()
	}

	result, err := engine.Run(ctx, snapshot, engineConfig, progressSink, s.log)
	if err != nil {
		return dto.RunResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.ObserveResult(result)
	}

	s.log.Info("scheduler run complete", logger.RunFields(result.RunID, result.Generations, result.Best.Eval.Fitness, result.Cancelled)...)

	if err := s.runs.Save(ctx, req.SnapshotID, result); err != nil {
		s.log.Warn("failed to persist run result", zap.String("run_id", result.RunID), zap.Error(err))
	}

	return toRunResponse(result), nil
}

// Validate reloads a persisted run and re-audits it against the snapshot's
// full constraint catalog, independent of the faster in-loop scoring that
// produced it.
func (s *SchedulerService) Validate(ctx context.Context, filter models.SnapshotFilter, req dto.ValidateRequest) (dto.ValidateResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ValidateResponse{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	row, err := s.runs.FindByID(ctx, req.RunID)
	if err != nil {
		return dto.ValidateResponse{}, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "run not found")
	}

	chromosome, err := s.runs.Chromosome(row)
	if err != nil {
		return dto.ValidateResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decoding stored run failed")
	}

	snapshot, err := s.snapshots.Load(ctx, filter)
	if err != nil {
		return dto.ValidateResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "loading snapshot failed")
	}

	report := engine.Validate(snapshot, chromosome)
	return toValidateResponse(report), nil
}

func (s *SchedulerService) engineConfigFrom(req dto.RunRequest) engine.Config {
	c := engine.Config{
		PopulationSize: firstNonZeroInt(req.PopulationSize, s.defaults.PopulationSize),
		MaxGenerations: firstNonZeroInt(req.MaxGenerations, s.defaults.MaxGenerations),
		MutationRate:   firstNonZeroFloat(req.MutationRate, s.defaults.MutationRate),
		CrossoverRate:  firstNonZeroFloat(req.CrossoverRate, s.defaults.CrossoverRate),
		ElitismCount:   firstNonZeroInt(req.ElitismCount, s.defaults.ElitismCount),
		TournamentSize: firstNonZeroInt(req.TournamentSize, s.defaults.TournamentSize),
		Seed:           req.Seed,
	}
	return c
}

func firstNonZeroInt(primary, fallback int) int {
	if primary != 0 {
		return primary
	}
	return fallback
}

func firstNonZeroFloat(primary, fallback float64) float64 {
	if primary != 0 {
		return primary
	}
	return fallback
}

func toRunResponse(result engine.Result) dto.RunResponse {
	genes := make([]dto.GeneView, 0, len(result.Best.Genes))
	for _, g := range result.Best.Genes {
		genes = append(genes, dto.GeneView{
			CourseCode:       g.CourseCode,
			SectionName:      g.SectionName,
			SessionType:      string(g.SessionType),
			SessionIndex:     g.SessionIndex,
			TimeSlotID:       g.TimeSlotID,
			FacultyID:        g.FacultyID,
			RoomID:           g.RoomID,
			DurationHours:    g.DurationHours,
			ConsecutiveSlots: g.ConsecutiveSlots,
		})
	}

	history := make([]dto.HistoryPoint, 0, len(result.History))
	for _, h := range result.History {
		history = append(history, dto.HistoryPoint{
			Generation:         h.Generation,
			BestFitness:        h.BestFitness,
			MeanFitness:        h.MeanFitness,
			BestHardViolations: h.BestHardViolations,
			BestSoftViolations: h.BestSoftViolations,
		})
	}

	return dto.RunResponse{
		RunID:           result.RunID,
		Fitness:         result.Best.Eval.Fitness,
		HardViolations:  result.Best.Eval.HardViolations,
		SoftViolations:  result.Best.Eval.SoftViolations,
		CategoryCounts:  result.Best.Eval.CategoryCounts,
		CategoryPenalty: result.Best.Eval.CategoryPenalty,
		Genes:           genes,
		History:         history,
		Generations:     result.Generations,
		Termination:     string(result.Termination),
		Cancelled:       result.Cancelled,
		DurationSeconds: result.Duration.Seconds(),
	}
}

func toValidateResponse(report engine.ValidationReport) dto.ValidateResponse {
	return dto.ValidateResponse{
		Hard:      toViolationViews(report.Hard),
		Soft:      toViolationViews(report.Soft),
		TotalHard: report.TotalHard,
		TotalSoft: report.TotalSoft,
	}
}

func toViolationViews(violations []engine.Violation) []dto.ValidationViolation {
	views := make([]dto.ValidationViolation, 0, len(violations))
	for _, v := range violations {
		views = append(views, dto.ValidationViolation{
			Constraint:  v.Constraint,
			Category:    string(v.Category),
			Kind:        string(v.Kind),
			Description: v.Description,
			Message:     v.Message,
		})
	}
	return views
}
