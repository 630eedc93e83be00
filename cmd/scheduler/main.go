// Command scheduler drives one evolutionary timetable run against a
// Postgres-backed snapshot and writes the result to disk. It is a CLI
// harness, not an HTTP service: request authentication, admin CRUD and the
// web-facing API surface are external collaborators this program never
// implements.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/domain"
	"github.com/campusforge/timetable-engine/internal/dto"
	"github.com/campusforge/timetable-engine/internal/engine"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/internal/repository"
	"github.com/campusforge/timetable-engine/internal/service"
	"github.com/campusforge/timetable-engine/pkg/cache"
	"github.com/campusforge/timetable-engine/pkg/config"
	"github.com/campusforge/timetable-engine/pkg/database"
	"github.com/campusforge/timetable-engine/pkg/export"
	"github.com/campusforge/timetable-engine/pkg/jobs"
	"github.com/campusforge/timetable-engine/pkg/logger"
	"github.com/campusforge/timetable-engine/pkg/metrics"
	"github.com/campusforge/timetable-engine/pkg/progresscache"
	"github.com/campusforge/timetable-engine/pkg/storage"
)

func main() {
	department := flag.String("department", "", "limit the snapshot to one department")
	semester := flag.Int("semester", 0, "limit the snapshot to one semester (0 = all)")
	snapshotLabel := flag.String("snapshot-id", "default", "label recorded against the persisted run")
	format := flag.String("format", "csv", "export format: csv or pdf")
	seed := flag.Int64("seed", 0, "deterministic RNG seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, progress will not be cached", "error", err)
	} else {
		defer redisClient.Close()
	}

	snapshotRepo := repository.NewSnapshotRepository(db)
	runRepo := repository.NewRunRepository(db)
	metricsCollector := metrics.NewMetrics()
	schedulerSvc := service.NewSchedulerService(snapshotRepo, runRepo, metricsCollector, cfg.Engine, logr)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsCollector.Handler())
		server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logr.Sugar().Errorw("metrics server stopped", "error", err)
			}
		}()
		logr.Sugar().Infow("metrics exposed", "addr", cfg.Metrics.Addr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	queue := jobs.NewQueue("scheduler-runs", runHandler(schedulerSvc, logr), jobs.QueueConfig{
		Workers:    maxInt(cfg.Engine.WorkerConcurrency, 1),
		MaxRetries: 0,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	req := dto.RunRequest{SnapshotID: *snapshotLabel}
	if *seed != 0 {
		req.Seed = seed
	}

	var sink engine.ProgressSink = metrics.NewProgressSink(metricsCollector, nil)
	if redisClient != nil {
		cacheSink := progresscache.NewSink(redisClient, *snapshotLabel, cfg.Engine.RunTimeout)
		sink = metrics.NewProgressSink(metricsCollector, cacheSink)
	}

	done := make(chan runOutcome, 1)
	job := jobs.Job{
		ID:   *snapshotLabel,
		Type: "evolve-timetable",
		Payload: runJob{
			filter:  models.SnapshotFilter{Department: *department, Semester: *semester},
			request: req,
			sink:    sink,
			result:  done,
		},
	}

	if err := queue.Enqueue(job); err != nil {
		logr.Sugar().Fatalw("enqueue run", "error", err)
	}

	select {
	case outcome := <-done:
		if outcome.err != nil {
			logr.Sugar().Fatalw("run failed", "error", outcome.err)
		}
		if err := writeExport(cfg, snapshotRepo, *department, *semester, outcome.response, *format, logr); err != nil {
			logr.Sugar().Errorw("export failed", "error", err)
		}
	case <-ctx.Done():
		logr.Sugar().Warn("shutting down before run completed")
	}
}

type runJob struct {
	filter  models.SnapshotFilter
	request dto.RunRequest
	sink    engine.ProgressSink
	result  chan<- runOutcome
}

type runOutcome struct {
	response dto.RunResponse
	err      error
}

func runHandler(svc *service.SchedulerService, logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(runJob)
		if !ok {
			return fmt.Errorf("unexpected job payload type %T", job.Payload)
		}

		response, err := svc.Run(ctx, payload.filter, payload.request, payload.sink)
		payload.result <- runOutcome{response: response, err: err}
		if err != nil {
			return err
		}

		logr.Info("run finished",
			zap.String("run_id", response.RunID),
			zap.Float64("fitness", response.Fitness),
			zap.Int("hard_violations", response.HardViolations),
			zap.String("termination", response.Termination),
		)
		return nil
	}
}

func writeExport(cfg *config.Config, snapshotRepo *repository.SnapshotRepository, department string, semester int, response dto.RunResponse, format string, logr *zap.Logger) error {
	fileStore, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := snapshotRepo.Load(ctx, models.SnapshotFilter{Department: department, Semester: semester})
	if err != nil {
		return fmt.Errorf("reload snapshot for export: %w", err)
	}

	chromosome := chromosomeFromResponse(response)
	dataset := export.TimetableDataset(snapshot, chromosome)

	switch format {
	case "pdf":
		pdf, err := export.NewPDFExporter().Render(dataset, "Generated Timetable")
		if err != nil {
			return err
		}
		path, err := fileStore.Save(response.RunID+".pdf", pdf)
		if err != nil {
			return err
		}
		logr.Sugar().Infow("exported timetable", "path", path)
	default:
		csvBytes, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return err
		}
		path, err := fileStore.Save(response.RunID+".csv", csvBytes)
		if err != nil {
			return err
		}
		logr.Sugar().Infow("exported timetable", "path", path)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// chromosomeFromResponse rebuilds enough of a domain.Chromosome from the
// service's wire response to drive an export render, without a second
// round trip through the run repository.
func chromosomeFromResponse(response dto.RunResponse) domain.Chromosome {
	genes := make([]domain.Gene, 0, len(response.Genes))
	for _, g := range response.Genes {
		genes = append(genes, domain.Gene{
			CourseCode:       g.CourseCode,
			SectionName:      g.SectionName,
			SessionType:      domain.SessionType(g.SessionType),
			SessionIndex:     g.SessionIndex,
			TimeSlotID:       g.TimeSlotID,
			FacultyID:        g.FacultyID,
			RoomID:           g.RoomID,
			DurationHours:    g.DurationHours,
			ConsecutiveSlots: g.ConsecutiveSlots,
		})
	}
	return domain.Chromosome{
		Genes: genes,
		Eval: domain.EvaluationResult{
			Fitness:        response.Fitness,
			HardViolations: response.HardViolations,
			SoftViolations: response.SoftViolations,
		},
	}
}
