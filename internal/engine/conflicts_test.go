package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/domain"
)

func TestDetectConflictsFindsRoomDoubleBooking(t *testing.T) {
	snapshot := baseSnapshotForFitness()
	snapshot.Courses = append(snapshot.Courses, domain.Course{
		Code: "CS102", Type: domain.CourseTheory,
		Theory:   domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1},
		Sections: []domain.Section{{Name: "A", Strength: 30}},
	})

	chromosome := domain.Chromosome{Genes: []domain.Gene{
		{CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory, TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
		{CourseCode: "CS102", SectionName: "A", SessionType: domain.SessionTheory, TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
	}}

	conflicts := DetectConflicts(snapshot, chromosome)
	var kinds []string
	for _, c := range conflicts {
		kinds = append(kinds, c.Kind)
	}
	assert.Contains(t, kinds, "room")
	assert.Contains(t, kinds, "faculty")
	assert.NotContains(t, kinds, "section", "section A of CS101 and section A of CS102 are different sections")
}

func TestDetectConflictsIsSubsetOfValidatorHardViolations(t *testing.T) {
	snapshot := baseSnapshotForFitness()
	snapshot.Constraints = []domain.Constraint{
		{Name: "Faculty Double Booking", Kind: domain.KindHard, Category: domain.CategoryFacultyWorkload, Active: true},
		{Name: "Room Double Booking", Kind: domain.KindHard, Category: domain.CategoryRoomAllocation, Active: true},
		{Name: "Section Conflict", Kind: domain.KindHard, Category: domain.CategoryStudentSection, Active: true},
	}
	snapshot.Courses = append(snapshot.Courses, domain.Course{
		Code: "CS102", Type: domain.CourseTheory,
		Theory:   domain.SessionSpec{WeeklyHours: 1, SessionDuration: 1},
		Sections: []domain.Section{{Name: "A", Strength: 30}},
	})

	chromosome := domain.Chromosome{Genes: []domain.Gene{
		{CourseCode: "CS101", SectionName: "A", SessionType: domain.SessionTheory, TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
		{CourseCode: "CS102", SectionName: "A", SessionType: domain.SessionTheory, TimeSlotID: "ts1", FacultyID: "f1", RoomID: "r1", DurationHours: 1},
	}}

	conflicts := DetectConflicts(snapshot, chromosome)
	report := Validate(snapshot, chromosome)

	require.NotEmpty(t, conflicts)
	assert.LessOrEqual(t, len(conflicts), len(report.Hard), "the fast pass never finds more than the full validator")
}

func TestConflictsFromIgnoresSingleOccupants(t *testing.T) {
	occupied := map[bookingKey][]domain.GeneKey{
		{Entity: "r1", Day: 1, Slot: 1}: {{CourseCode: "CS101"}},
	}
	assert.Empty(t, conflictsFrom("room", occupied))
}
