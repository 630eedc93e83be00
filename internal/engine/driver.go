package engine

import (
	"context"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/domain"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

// TerminationReason names why a run stopped.
type TerminationReason string

const (
	TerminationSuccess    TerminationReason = "success"
	TerminationExhaustion TerminationReason = "exhaustion"
	TerminationCancelled  TerminationReason = "cancelled"
)

// HistoryRecord is one generation's entry in a run's fitness trajectory.
type HistoryRecord struct {
	Generation         int     `json:"generation"`
	BestFitness        float64 `json:"bestFitness"`
	MeanFitness        float64 `json:"meanFitness"`
	BestHardViolations int     `json:"bestHardViolations"`
	BestSoftViolations int     `json:"bestSoftViolations"`
}

// Result is what run() returns: the best chromosome found, its scoring
// detail, the full generation history, and how the run ended.
type Result struct {
	RunID       string            `json:"runId"`
	Best        domain.Chromosome `json:"best"`
	History     []HistoryRecord   `json:"history"`
	Generations int               `json:"generations"`
	Termination TerminationReason `json:"termination"`
	Cancelled   bool              `json:"cancelled"`
	Duration    time.Duration     `json:"duration"`
}

// successFitnessFloor, together with zero hard violations, defines the
// convergence condition: fitness above 950.
const successFitnessFloor = 950.0

// Run executes one evolutionary search over the snapshot. It never raises
// for ordinary infeasibility. A session requirement with no candidate
// faculty or room gets no gene at all; Evaluate does not count such a
// missing gene, so it adds no hard violation and does not lower fitness.
// The only raised errors are a nonsensical Config and an empty course list.
func Run(ctx context.Context, snapshot domain.Snapshot, config Config, sink ProgressSink, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NopProgressSink{}
	}
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return Result{}, err
	}
	if len(snapshot.Courses) == 0 {
		return Result{}, appErrors.Clone(appErrors.ErrInputInfeasible, "snapshot contains no courses")
	}

	start := time.Now()
	rng := newRNG(config.Seed)
	pools := buildCandidatePools(snapshot)
	weights := config.Weights

	population := make([]domain.Chromosome, config.PopulationSize)
	for i := range population {
		population[i] = RandomConstruct(snapshot, pools, rng, logger)
	}

	var (
		best        domain.Chromosome
		haveBest    bool
		history     []HistoryRecord
		generation  int
		termination TerminationReason
	)

	for {
		evaluatePopulation(snapshot, population, weights)

		genBest := bestOf(population)
		if !haveBest || genBest.Eval.Fitness > best.Eval.Fitness {
			best = genBest.Clone()
			haveBest = true
		}
		mean := meanFitness(population)
		history = append(history, HistoryRecord{
			Generation:         generation,
			BestFitness:        best.Eval.Fitness,
			MeanFitness:        mean,
			BestHardViolations: best.Eval.HardViolations,
			BestSoftViolations: best.Eval.SoftViolations,
		})

		if sink != nil && generation%10 == 0 {
			if err := sink.Notify(ctx, ProgressRecord{
				Generation:         generation,
				MaxGenerations:     config.MaxGenerations,
				PercentComplete:    100 * float64(generation) / float64(config.MaxGenerations),
				BestFitness:        best.Eval.Fitness,
				MeanFitness:        mean,
				BestHardViolations: best.Eval.HardViolations,
			}); err != nil {
				logger.Warn("progress sink notify failed", zap.Error(err), zap.Int("generation", generation))
			}
		}

		if ctx.Err() != nil {
			termination = TerminationCancelled
			break
		}
		if best.Eval.HardViolations == 0 && best.Eval.Fitness > successFitnessFloor {
			termination = TerminationSuccess
			break
		}
		if generation >= config.MaxGenerations {
			termination = TerminationExhaustion
			break
		}

		population = evolve(population, snapshot, pools, config, rng)
		generation++
	}

	return Result{
		RunID:       uuid.NewString(),
		Best:        best,
		History:     history,
		Generations: generation,
		Termination: termination,
		Cancelled:   termination == TerminationCancelled,
		Duration:    time.Since(start),
	}, nil
}

func newRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// evaluatePopulation scores every chromosome in place. Chromosomes share no
// mutable state, so distinct chromosomes are evaluated concurrently against
// the same read-only snapshot.
func evaluatePopulation(snapshot domain.Snapshot, population []domain.Chromosome, weights Weights) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range population {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			population[i].Eval = Evaluate(snapshot, population[i], weights)
		}(i)
	}
	wg.Wait()
}

func bestOf(population []domain.Chromosome) domain.Chromosome {
	best := population[0]
	for _, c := range population[1:] {
		if c.Eval.Fitness > best.Eval.Fitness {
			best = c
		}
	}
	return best
}

func meanFitness(population []domain.Chromosome) float64 {
	if len(population) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range population {
		sum += c.Eval.Fitness
	}
	return sum / float64(len(population))
}

// evolve builds the next generation: elitism, then tournament-selected
// parents combined by crossover or cloning, then mutation.
func evolve(population []domain.Chromosome, snapshot domain.Snapshot, pools *candidatePools, config Config, rng *rand.Rand) []domain.Chromosome {
	sorted := append([]domain.Chromosome(nil), population...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Eval.Fitness > sorted[j].Eval.Fitness
	})

	next := make([]domain.Chromosome, 0, config.PopulationSize)
	for i := 0; i < config.ElitismCount && i < len(sorted); i++ {
		next = append(next, sorted[i].Clone())
	}

	for len(next) < config.PopulationSize {
		p1 := tournamentSelect(population, config.TournamentSize, rng)
		p2 := tournamentSelect(population, config.TournamentSize, rng)

		var child domain.Chromosome
		if rng.Float64() < config.CrossoverRate {
			child = crossover(p1, p2, rng)
		} else {
			child = p1.Clone()
		}

		if rng.Float64() < config.MutationRate {
			mutate(child, snapshot, pools, rng)
		}

		next = append(next, child)
	}

	return next
}

// tournamentSelect samples tournamentSize members uniformly with
// replacement and returns the fittest, ties broken by encounter order.
func tournamentSelect(population []domain.Chromosome, tournamentSize int, rng *rand.Rand) domain.Chromosome {
	best := population[rng.Intn(len(population))]
	for i := 1; i < tournamentSize; i++ {
		candidate := population[rng.Intn(len(population))]
		if candidate.Eval.Fitness > best.Eval.Fitness {
			best = candidate
		}
	}
	return best
}

// crossover performs a single-point cut over parent1's gene sequence: the
// prefix is inherited verbatim, the suffix is replaced gene-for-gene from
// parent2 by matching requirement identity (course, section, session type,
// session index) rather than slice position, so the offspring keeps the
// exact requirement multiset even when the parents' gene orders differ.
// When parent2 has no gene for a given identity, parent1's gene is kept.
func crossover(p1, p2 domain.Chromosome, rng *rand.Rand) domain.Chromosome {
	if len(p1.Genes) == 0 {
		return p1.Clone()
	}
	p2ByKey := p2.ByKey()
	cut := rng.Intn(len(p1.Genes))

	genes := make([]domain.Gene, len(p1.Genes))
	for i, g := range p1.Genes {
		if i < cut {
			genes[i] = g
			continue
		}
		if g2, ok := p2ByKey[g.Key()]; ok {
			genes[i] = g2
		} else {
			genes[i] = g
		}
	}
	return domain.Chromosome{Genes: genes}
}

// mutate applies one of three equally-likely mutations to a uniformly
// chosen gene: replace its time-slot, its faculty, or its room.
func mutate(c domain.Chromosome, snapshot domain.Snapshot, pools *candidatePools, rng *rand.Rand) {
	if len(c.Genes) == 0 {
		return
	}
	idx := rng.Intn(len(c.Genes))
	gene := &c.Genes[idx]

	switch rng.Intn(3) {
	case 0:
		if slots := pools.slots; len(slots) > 0 {
			gene.TimeSlotID = slots[rng.Intn(len(slots))].ID
		}
	case 1:
		if faculty := pools.facultyFor(gene.CourseCode, gene.SessionType); len(faculty) > 0 {
			gene.FacultyID = faculty[rng.Intn(len(faculty))].ID
		}
	case 2:
		if rooms := pools.roomsFor(gene.CourseCode, gene.SessionType, gene.SectionName); len(rooms) > 0 {
			gene.RoomID = rooms[rng.Intn(len(rooms))].ID
		}
	}
}
