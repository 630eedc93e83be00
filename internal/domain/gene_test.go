package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromosomeCloneDeepCopies(t *testing.T) {
	original := Chromosome{
		Genes: []Gene{{CourseCode: "CS101", SectionName: "A"}},
		Eval: EvaluationResult{
			Fitness:        900,
			CategoryCounts: map[string]int{"student_gap": 1},
		},
	}

	clone := original.Clone()
	clone.Genes[0].CourseCode = "CS999"
	clone.Eval.CategoryCounts["student_gap"] = 99

	assert.Equal(t, "CS101", original.Genes[0].CourseCode)
	assert.Equal(t, 1, original.Eval.CategoryCounts["student_gap"])
}

func TestChromosomeByKeyIndexesByRequirementIdentity(t *testing.T) {
	c := Chromosome{Genes: []Gene{
		{CourseCode: "CS101", SectionName: "A", SessionType: SessionTheory, SessionIndex: 0, RoomID: "r1"},
		{CourseCode: "CS101", SectionName: "A", SessionType: SessionTheory, SessionIndex: 1, RoomID: "r2"},
	}}

	byKey := c.ByKey()
	require.Len(t, byKey, 2)

	g, ok := byKey[GeneKey{CourseCode: "CS101", SectionName: "A", SessionType: SessionTheory, SessionIndex: 1}]
	require.True(t, ok)
	assert.Equal(t, "r2", g.RoomID)
}

func TestGeneKeyIgnoresAssignment(t *testing.T) {
	a := Gene{CourseCode: "CS101", SectionName: "A", SessionType: SessionTheory, SessionIndex: 0, RoomID: "r1", TimeSlotID: "ts1"}
	b := Gene{CourseCode: "CS101", SectionName: "A", SessionType: SessionTheory, SessionIndex: 0, RoomID: "r2", TimeSlotID: "ts2"}
	assert.Equal(t, a.Key(), b.Key())
}
