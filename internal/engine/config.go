package engine

import (
	"fmt"

	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

// Weights maps a violation name to its fitness penalty per occurrence.
// Callers may override any subset; unset entries fall back to DefaultWeights.
type Weights map[string]float64

// Violation name constants, shared by the Fitness Evaluator and the Weights map.
const (
	ViolationFacultyDoubleBooking = "faculty_double_booking"
	ViolationRoomDoubleBooking    = "room_double_booking"
	ViolationSectionDoubleBooking = "section_double_booking"
	ViolationFacultyUnavailable   = "faculty_outside_availability"
	ViolationLabContinuityBroken  = "lab_continuity_broken"
	ViolationRoomCapacity         = "room_capacity_exceeded"
	ViolationWorkloadOverMax      = "workload_over_max"
	ViolationWorkloadUnderMin     = "workload_under_min"
	ViolationStudentGap           = "student_gap"
	ViolationFacultyGap           = "faculty_gap"
	ViolationWorkloadImbalance    = "workload_imbalance"
	ViolationExcessiveConsecutive = "excessive_consecutive_hours"
	ViolationPreferenceMismatch   = "preference_mismatch"
	ViolationUnbalancedDaily      = "unbalanced_daily_distribution"
	ViolationUnknownReference     = "unknown_reference"
)

// DefaultWeights is the default penalty-per-violation table.
func DefaultWeights() Weights {
	return Weights{
		ViolationFacultyDoubleBooking: 1000,
		ViolationRoomDoubleBooking:    1000,
		ViolationSectionDoubleBooking: 1000,
		ViolationFacultyUnavailable:   900,
		ViolationLabContinuityBroken: 800,
		ViolationRoomCapacity:        800,
		ViolationWorkloadOverMax:     100,
		ViolationWorkloadUnderMin:    80,
		ViolationStudentGap:          50,
		ViolationFacultyGap:          40,
		ViolationWorkloadImbalance:   60,
		ViolationExcessiveConsecutive: 50,
		ViolationPreferenceMismatch:  30,
		ViolationUnbalancedDaily:     40,
		ViolationUnknownReference:    1000,
	}
}

// hardViolationNames lists which violation names count toward the hard-violation
// total versus the soft-violation total.
var hardViolationNames = map[string]bool{
	ViolationFacultyDoubleBooking: true,
	ViolationRoomDoubleBooking:    true,
	ViolationSectionDoubleBooking: true,
	ViolationFacultyUnavailable:   true,
	ViolationLabContinuityBroken:  true,
	ViolationRoomCapacity:         true,
	ViolationUnknownReference:     true,
}

func (w Weights) weightFor(name string) float64 {
	if v, ok := w[name]; ok {
		return v
	}
	return DefaultWeights()[name]
}

// Config governs one evolutionary run.
type Config struct {
	PopulationSize  int
	MaxGenerations  int
	MutationRate    float64
	CrossoverRate   float64
	ElitismCount    int
	TournamentSize  int
	Weights         Weights
	Seed            *int64
}

// DefaultConfig returns the engine's baseline tuning.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 100,
		MaxGenerations: 1000,
		MutationRate:   0.1,
		CrossoverRate:  0.8,
		ElitismCount:   5,
		TournamentSize: 5,
		Weights:        DefaultWeights(),
	}
}

// Validate rejects nonsensical configuration. Apart from Run's rejection of
// an empty course list, this is the only place the engine raises an error to
// the caller rather than reporting a problem as result data.
func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidConfig, "populationSize must be > 0")
	}
	if c.MaxGenerations <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidConfig, "maxGenerations must be > 0")
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return appErrors.Clone(appErrors.ErrInvalidConfig, "mutationRate must be within [0,1]")
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return appErrors.Clone(appErrors.ErrInvalidConfig, "crossoverRate must be within [0,1]")
	}
	if c.ElitismCount < 0 || c.ElitismCount > c.PopulationSize {
		return appErrors.Clone(appErrors.ErrInvalidConfig, fmt.Sprintf("elitismCount must be within [0,%d]", c.PopulationSize))
	}
	if c.TournamentSize <= 0 || c.TournamentSize > c.PopulationSize {
		return appErrors.Clone(appErrors.ErrInvalidConfig, fmt.Sprintf("tournamentSize must be within (0,%d]", c.PopulationSize))
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PopulationSize == 0 {
		c.PopulationSize = d.PopulationSize
	}
	if c.MaxGenerations == 0 {
		c.MaxGenerations = d.MaxGenerations
	}
	if c.MutationRate == 0 {
		c.MutationRate = d.MutationRate
	}
	if c.CrossoverRate == 0 {
		c.CrossoverRate = d.CrossoverRate
	}
	if c.ElitismCount == 0 {
		c.ElitismCount = d.ElitismCount
	}
	if c.TournamentSize == 0 {
		c.TournamentSize = d.TournamentSize
	}
	if c.Weights == nil {
		c.Weights = d.Weights
	}
	return c
}
