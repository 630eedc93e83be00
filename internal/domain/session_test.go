package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionSpecSessionCount(t *testing.T) {
	cases := []struct {
		name string
		spec SessionSpec
		want int
	}{
		{"exact division", SessionSpec{WeeklyHours: 4, SessionDuration: 2}, 2},
		{"ceil division", SessionSpec{WeeklyHours: 3, SessionDuration: 2}, 2},
		{"zero duration", SessionSpec{WeeklyHours: 3, SessionDuration: 0}, 0},
		{"zero hours", SessionSpec{WeeklyHours: 0, SessionDuration: 1}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.spec.SessionCount())
		})
	}
}

func TestDeriveSessionRequirementsTheoryAndLab(t *testing.T) {
	course := Course{
		Code: "CS201",
		Type: CourseTheoryAndLab,
		Theory: SessionSpec{WeeklyHours: 3, SessionDuration: 1},
		Lab:    SessionSpec{WeeklyHours: 2, SessionDuration: 2, ContinuityRequired: true},
	}
	section := Section{Name: "A"}

	reqs := DeriveSessionRequirements(course, section)

	var theory, lab int
	for _, r := range reqs {
		switch r.Type {
		case SessionTheory:
			theory++
			assert.Equal(t, 1, r.ConsecutiveSlots)
		case SessionLab:
			lab++
			assert.Equal(t, 2, r.ConsecutiveSlots)
			assert.True(t, r.RequiresContinuity)
		}
	}
	assert.Equal(t, 3, theory)
	assert.Equal(t, 1, lab)
}

func TestDeriveSessionRequirementsTheoryOnly(t *testing.T) {
	course := Course{
		Code:   "MA101",
		Type:   CourseTheory,
		Theory: SessionSpec{WeeklyHours: 2, SessionDuration: 1},
	}
	reqs := DeriveSessionRequirements(course, Section{Name: "B"})
	require := assert.New(t)
	require.Len(reqs, 2)
	for _, r := range reqs {
		require.Equal(SessionTheory, r.Type)
	}
}
