package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/domain"
)

func TestValidateSkipsInactiveAndReservedCategories(t *testing.T) {
	snapshot := baseSnapshotForFitness()
	snapshot.Constraints = []domain.Constraint{
		{Name: "Faculty Max Hours", Kind: domain.KindSoft, Category: domain.CategoryFacultyWorkload, Active: false},
		{Name: "Preferred Slot Adherence", Kind: domain.KindSoft, Category: domain.CategoryPreference, Active: true},
	}
	chromosome := domain.Chromosome{Genes: []domain.Gene{{
		CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory,
		TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1,
	}}}

	report := Validate(snapshot, chromosome)
	assert.Empty(t, report.Hard)
	assert.Empty(t, report.Soft)
}

func TestValidateFacultyWorkloadDispatchesOnConstraintName(t *testing.T) {
	snapshot := baseSnapshotForFitness()
	snapshot.Faculty[0].Workload = domain.WorkloadBounds{MinHours: 5, MaxHours: 5}
	snapshot.Constraints = []domain.Constraint{
		{Name: "Faculty Min Hours", Kind: domain.KindSoft, Category: domain.CategoryFacultyWorkload, Active: true},
	}
	chromosome := domain.Chromosome{Genes: []domain.Gene{{
		CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory,
		TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1,
	}}}

	report := Validate(snapshot, chromosome)
	require.Len(t, report.Soft, 1)
	assert.Contains(t, report.Soft[0].Message, "below min")
}

func TestValidateStudentSectionGapDetectsOutOfOrderSlots(t *testing.T) {
	snapshot := baseSnapshotForFitness()
	snapshot.Courses[0].Sections = []domain.Section{{Name: "A", Strength: 30}}
	snapshot.Courses[0].Theory = domain.SessionSpec{WeeklyHours: 3, SessionDuration: 1}
	snapshot.TimeSlots = []domain.TimeSlot{
		{ID: "ts1", Day: 1, SlotNumber: 1, Type: domain.SlotRegular, Active: true},
		{ID: "ts2", Day: 1, SlotNumber: 2, Type: domain.SlotRegular, Active: true},
		{ID: "ts6", Day: 1, SlotNumber: 6, Type: domain.SlotRegular, Active: true},
	}
	snapshot.Constraints = []domain.Constraint{
		{Name: "Student Section Gap", Kind: domain.KindSoft, Category: domain.CategoryStudentSection, Active: true},
	}

	// Genes arrive out of slot-number order (6, 1, 2), as a chromosome's bag
	// of genes carries no positional meaning.
	chromosome := domain.Chromosome{Genes: []domain.Gene{
		{CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory, SessionIndex: 0, TimeSlotID: "ts6", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
		{CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory, SessionIndex: 1, TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
		{CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory, SessionIndex: 2, TimeSlotID: "ts2", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
	}}

	report := Validate(snapshot, chromosome)
	require.Len(t, report.Soft, 1, "slot 2 to slot 6 is a gap of 3, greater than the threshold of 2")
}

func TestValidateElectiveGroupOverlap(t *testing.T) {
	snapshot := baseSnapshotForFitness()
	snapshot.Courses = append(snapshot.Courses, domain.Course{
		Code: "CS102", Type: domain.CourseTheory, ElectiveGroup: "electives-1",
		Theory:   domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1},
		Sections: []domain.Section{{Name: "A", Strength: 30}},
	})
	snapshot.Courses[0].ElectiveGroup = "electives-1"
	snapshot.Constraints = []domain.Constraint{
		{Name: "Elective Overlap", Kind: domain.KindHard, Category: domain.CategoryElectiveGrouping, Active: true},
	}

	chromosome := domain.Chromosome{Genes: []domain.Gene{
		{CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory, TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
		{CourseCode: "CS102", SectionName: "A", SessionType: domain.SessionTheory, TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
	}}

	report := Validate(snapshot, chromosome)
	require.Len(t, report.Hard, 1)
	assert.Contains(t, report.Hard[0].Message, "electives-1")
}

func TestValidateLabContinuityNamesTheBreak(t *testing.T) {
	snapshot := baseSnapshotForFitness()
	snapshot.Constraints = []domain.Constraint{
		{Name: "Lab Continuity", Kind: domain.KindHard, Category: domain.CategoryLabContinuity, Active: true},
	}
	chromosome := domain.Chromosome{Genes: []domain.Gene{{
		CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionLab,
		TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 2, ConsecutiveSlots: 2,
	}}}

	report := Validate(snapshot, chromosome)
	require.Len(t, report.Hard, 1)
	assert.Equal(t, domain.CategoryLabContinuity, report.Hard[0].Category)
}
