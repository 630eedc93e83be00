package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CourseRow is the flat persistence shape of a domain.Course: nested
// session specs, section list and room requirements are stored as JSONB,
// matching the teacher's SemesterSchedule.Meta convention for structured
// columns that don't warrant their own join table.
type CourseRow struct {
	Code          string         `db:"code"`
	Department    string         `db:"department"`
	Semester      int            `db:"semester"`
	Type          string         `db:"course_type"`
	Theory        types.JSONText `db:"theory"`
	Lab           types.JSONText `db:"lab"`
	Sections      types.JSONText `db:"sections"`
	ElectiveGroup string         `db:"elective_group"`
	TheoryRoom    types.JSONText `db:"theory_room"`
	LabRoom       types.JSONText `db:"lab_room"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// FacultyRow is the flat persistence shape of a domain.Faculty.
type FacultyRow struct {
	ID           string         `db:"id"`
	Department   string         `db:"department"`
	Qualified    types.JSONText `db:"qualified"`
	Availability types.JSONText `db:"availability"`
	Workload     types.JSONText `db:"workload"`
	Preferences  types.JSONText `db:"preferences"`
	Active       bool           `db:"active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// RoomRow is the flat persistence shape of a domain.Room.
type RoomRow struct {
	ID         string         `db:"id"`
	Type       string         `db:"room_type"`
	LabSubtype string         `db:"lab_subtype"`
	Capacity   int            `db:"capacity"`
	Facilities types.JSONText `db:"facilities"`
	Active     bool           `db:"active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// TimeSlotRow is the flat persistence shape of a domain.TimeSlot.
type TimeSlotRow struct {
	ID         string    `db:"id"`
	Day        int       `db:"day"`
	SlotNumber int       `db:"slot_number"`
	Start      string    `db:"start_time"`
	End        string    `db:"end_time"`
	Type       string    `db:"slot_type"`
	Active     bool      `db:"active"`
	CreatedAt  time.Time `db:"created_at"`
}

// ConstraintRow is the flat persistence shape of a domain.Constraint.
type ConstraintRow struct {
	Name        string         `db:"name"`
	Kind        string         `db:"kind"`
	Category    string         `db:"category"`
	Priority    int            `db:"priority"`
	Weight      float64        `db:"weight"`
	Active      bool           `db:"active"`
	Params      types.JSONText `db:"params"`
	Description string         `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

// SnapshotFilter scopes which rows load into one Snapshot, mirroring the
// teacher's *Filter structs used across its repository layer.
type SnapshotFilter struct {
	Department string
	Semester   int
}
