package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/domain"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

func smallConfig(seed int64) Config {
	return Config{
		PopulationSize: 20,
		MaxGenerations: 60,
		MutationRate:   0.2,
		CrossoverRate:  0.8,
		ElitismCount:   2,
		TournamentSize: 3,
		Seed:           &seed,
	}
}

func TestRunRejectsEmptyCourseList(t *testing.T) {
	_, err := Run(context.Background(), domain.Snapshot{}, smallConfig(1), nil, zap.NewNop())
	require.Error(t, err)
	assert.True(t, appErrors.FromError(err).Code == appErrors.ErrInputInfeasible.Code)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), trivialFeasibleSnapshot(), Config{PopulationSize: -1}, nil, zap.NewNop())
	require.Error(t, err)
}

// trivialFeasibleSnapshot has exactly enough candidates for a zero-violation
// schedule: one course, one section, one qualified faculty, one suitable
// room, and more time slots than sessions required.
func trivialFeasibleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Courses: []domain.Course{{
			Code: "CS101", Department: "CSE", Type: domain.CourseTheory,
			Theory:   domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1},
			Sections: []domain.Section{{Name: "A", Strength: 30}},
		}},
		Faculty: []domain.Faculty{{
			ID: "f1", Department: "CSE", Active: true, Qualified: []string{"CS101"},
			Availability: []domain.AvailabilityWindow{{Day: 1, Start: "08:00", End: "18:00"}},
			Workload:     domain.WorkloadBounds{MinHours: 0, MaxHours: 20},
		}},
		Rooms: []domain.Room{{ID: "r1", Type: domain.RoomClassroom, Capacity: 40, Active: true}},
		TimeSlots: []domain.TimeSlot{
			{ID: "ts1", Day: 1, SlotNumber: 1, Start: "08:00", End: "09:00", Type: domain.SlotRegular, Active: true},
			{ID: "ts2", Day: 1, SlotNumber: 2, Start: "09:00", End: "10:00", Type: domain.SlotRegular, Active: true},
			{ID: "ts3", Day: 2, SlotNumber: 1, Start: "08:00", End: "09:00", Type: domain.SlotRegular, Active: true},
		},
	}
}

func TestRunConvergesOnTrivialFeasibleSnapshot(t *testing.T) {
	result, err := Run(context.Background(), trivialFeasibleSnapshot(), smallConfig(42), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Best.Eval.HardViolations)
	assert.Equal(t, TerminationSuccess, result.Termination)
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Best.Genes, 1)
}

func TestRunIsDeterministicWithFixedSeed(t *testing.T) {
	snapshot := trivialFeasibleSnapshot()
	r1, err := Run(context.Background(), snapshot, smallConfig(7), nil, zap.NewNop())
	require.NoError(t, err)
	r2, err := Run(context.Background(), snapshot, smallConfig(7), nil, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, r1.Best.Eval.Fitness, r2.Best.Eval.Fitness)
	assert.Equal(t, r1.Generations, r2.Generations)
	assert.Equal(t, r1.Best.Genes, r2.Best.Genes)
}

// forcedDoubleBookingSnapshot gives two sections of the same course exactly
// one shared time slot, one faculty and one room: every feasible chromosome
// must double-book something.
func forcedDoubleBookingSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Courses: []domain.Course{{
			Code: "CS101", Department: "CSE", Type: domain.CourseTheory,
			Theory: domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1},
			Sections: []domain.Section{
				{Name: "A", Strength: 30},
				{Name: "B", Strength: 30},
			},
		}},
		Faculty: []domain.Faculty{{
			ID: "f1", Department: "CSE", Active: true, Qualified: []string{"CS101"},
			Availability: []domain.AvailabilityWindow{{Day: 1, Start: "08:00", End: "18:00"}},
		}},
		Rooms: []domain.Room{{ID: "r1", Type: domain.RoomClassroom, Capacity: 40, Active: true}},
		TimeSlots: []domain.TimeSlot{
			{ID: "ts1", Day: 1, SlotNumber: 1, Start: "08:00", End: "09:00", Type: domain.SlotRegular, Active: true},
		},
	}
}

func TestRunReportsForcedDoubleBooking(t *testing.T) {
	result, err := Run(context.Background(), forcedDoubleBookingSnapshot(), smallConfig(3), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Greater(t, result.Best.Eval.HardViolations, 0)
	assert.Equal(t, TerminationExhaustion, result.Termination)
}

// capacityShortfallSnapshot has only enough room capacity for some of the
// section's strength.
func capacityShortfallSnapshot() domain.Snapshot {
	snapshot := trivialFeasibleSnapshot()
	snapshot.Rooms[0].Capacity = 10
	snapshot.Courses[0].Sections[0].Strength = 50
	return snapshot
}

func TestRunReportsCapacityShortfallAsUnservedSession(t *testing.T) {
	snapshot := capacityShortfallSnapshot()
	required := snapshot.AllSessionRequirements()
	result, err := Run(context.Background(), snapshot, smallConfig(5), nil, zap.NewNop())
	require.NoError(t, err)
	// No room is large enough for the section, so RandomConstruct can never
	// produce a gene for its one session requirement: the best chromosome
	// ends up short of the full requirement count rather than carrying a
	// violation for it.
	assert.Less(t, len(result.Best.Genes), len(required))
	assert.Empty(t, result.Best.Genes)
}

// labContinuitySnapshot requires a 2-slot-long lab with only non-adjacent
// slots available, so continuity can never be satisfied.
func labContinuitySnapshot() domain.Snapshot {
	return domain.Snapshot{
		Courses: []domain.Course{{
			Code: "CS201", Department: "CSE", Type: domain.CourseLab,
			Lab:      domain.SessionSpec{WeeklyHours: 2, SessionDuration: 2, ContinuityRequired: true},
			Sections: []domain.Section{{Name: "A", Strength: 20}},
		}},
		Faculty: []domain.Faculty{{
			ID: "f1", Department: "CSE", Active: true, Qualified: []string{"CS201"},
			Availability: []domain.AvailabilityWindow{{Day: 1, Start: "08:00", End: "18:00"}},
		}},
		Rooms: []domain.Room{{ID: "lab1", Type: domain.RoomLab, Capacity: 30, Active: true}},
		TimeSlots: []domain.TimeSlot{
			{ID: "ts1", Day: 1, SlotNumber: 1, Start: "08:00", End: "09:00", Type: domain.SlotRegular, Active: true},
			{ID: "ts2", Day: 1, SlotNumber: 3, Start: "10:00", End: "11:00", Type: domain.SlotRegular, Active: true},
		},
	}
}

func TestRunReportsLabContinuityBreak(t *testing.T) {
	snapshot := labContinuitySnapshot()
	result, err := Run(context.Background(), snapshot, smallConfig(11), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Greater(t, result.Best.Eval.HardViolations, 0, "no pair of available slots is adjacent, so continuity can never hold")
}

// workloadImbalanceSnapshot gives two faculty members the same three
// courses, both qualified for every course, so an evenly-spread assignment is possible
// but not required — the imbalance penalty should be observable when one
// faculty happens to take on a disproportionate share.
func workloadImbalanceSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Courses: []domain.Course{
			{Code: "CS101", Department: "CSE", Type: domain.CourseTheory,
				Theory: domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1}, Sections: []domain.Section{{Name: "A", Strength: 20}}},
			{Code: "CS102", Department: "CSE", Type: domain.CourseTheory,
				Theory: domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1}, Sections: []domain.Section{{Name: "A", Strength: 20}}},
			{Code: "CS103", Department: "CSE", Type: domain.CourseTheory,
				Theory: domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1}, Sections: []domain.Section{{Name: "A", Strength: 20}}},
		},
		Faculty: []domain.Faculty{
			{ID: "f1", Department: "CSE", Active: true, Qualified: []string{"CS101", "CS102", "CS103"},
				Availability: []domain.AvailabilityWindow{{Day: 1, Start: "08:00", End: "18:00"}}},
			{ID: "f2", Department: "CSE", Active: true, Qualified: []string{"CS101", "CS102", "CS103"},
				Availability: []domain.AvailabilityWindow{{Day: 1, Start: "08:00", End: "18:00"}}},
		},
		Rooms: []domain.Room{{ID: "r1", Type: domain.RoomClassroom, Capacity: 40, Active: true}},
		TimeSlots: []domain.TimeSlot{
			{ID: "ts1", Day: 1, SlotNumber: 1, Start: "08:00", End: "09:00", Type: domain.SlotRegular, Active: true},
			{ID: "ts2", Day: 1, SlotNumber: 2, Start: "09:00", End: "10:00", Type: domain.SlotRegular, Active: true},
			{ID: "ts3", Day: 1, SlotNumber: 3, Start: "10:00", End: "11:00", Type: domain.SlotRegular, Active: true},
		},
	}
}

func TestRunHandlesWorkloadImbalanceSnapshot(t *testing.T) {
	result, err := Run(context.Background(), workloadImbalanceSnapshot(), smallConfig(9), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Best.Eval.HardViolations, "three independent courses always fit without conflict")
}

// electiveGroupOverlapSnapshot puts two courses in the same elective group
// with only one shared time slot, forcing an overlap for any chromosome that
// schedules both in the same slot.
func electiveGroupOverlapSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Courses: []domain.Course{
			{Code: "EL101", Department: "CSE", Type: domain.CourseTheory, ElectiveGroup: "group-a",
				Theory: domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1}, Sections: []domain.Section{{Name: "A", Strength: 20}}},
			{Code: "EL102", Department: "CSE", Type: domain.CourseTheory, ElectiveGroup: "group-a",
				Theory: domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1}, Sections: []domain.Section{{Name: "A", Strength: 20}}},
		},
		Faculty: []domain.Faculty{
			{ID: "f1", Department: "CSE", Active: true, Qualified: []string{"EL101"},
				Availability: []domain.AvailabilityWindow{{Day: 1, Start: "08:00", End: "18:00"}}},
			{ID: "f2", Department: "CSE", Active: true, Qualified: []string{"EL102"},
				Availability: []domain.AvailabilityWindow{{Day: 1, Start: "08:00", End: "18:00"}}},
		},
		Rooms: []domain.Room{
			{ID: "r1", Type: domain.RoomClassroom, Capacity: 40, Active: true},
			{ID: "r2", Type: domain.RoomClassroom, Capacity: 40, Active: true},
		},
		TimeSlots: []domain.TimeSlot{
			{ID: "ts1", Day: 1, SlotNumber: 1, Start: "08:00", End: "09:00", Type: domain.SlotRegular, Active: true},
		},
		Constraints: []domain.Constraint{
			{Name: "Elective Group Overlap", Kind: domain.KindHard, Category: domain.CategoryElectiveGrouping, Active: true},
		},
	}
}

func TestRunReportsElectiveGroupOverlapUnderValidation(t *testing.T) {
	snapshot := electiveGroupOverlapSnapshot()
	result, err := Run(context.Background(), snapshot, smallConfig(13), nil, zap.NewNop())
	require.NoError(t, err)

	report := Validate(snapshot, result.Best)
	require.Len(t, report.Hard, 1, "both electives only fit in the single shared slot")
	assert.Equal(t, domain.CategoryElectiveGrouping, report.Hard[0].Category)
}

func TestRunRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, trivialFeasibleSnapshot(), smallConfig(1), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, TerminationCancelled, result.Termination)
	assert.True(t, result.Cancelled)
}

func TestRunDeliversProgressToSink(t *testing.T) {
	records := make(chan ProgressRecord, 100)
	sink := ChannelProgressSink{Records: records}

	done := make(chan struct{})
	go func() {
		_, err := Run(context.Background(), trivialFeasibleSnapshot(), smallConfig(21), sink, zap.NewNop())
		assert.NoError(t, err)
		close(done)
	}()

	select {
	case <-records:
	case <-time.After(2 * time.Second):
		t.Fatal("expected at least one progress record")
	}
	<-done
}
