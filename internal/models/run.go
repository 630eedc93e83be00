package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RunStatus mirrors engine.TerminationReason for storage, plus a running
// state the engine package itself has no notion of.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSuccess   RunStatus = "SUCCESS"
	RunStatusExhausted RunStatus = "EXHAUSTED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// RunRow persists one engine.Result, the generated-schedule analogue of the
// teacher's SemesterSchedule row.
type RunRow struct {
	ID              string         `db:"id"`
	SnapshotLabel   string         `db:"snapshot_label"`
	Status          RunStatus      `db:"status"`
	Fitness         float64        `db:"fitness"`
	HardViolations  int            `db:"hard_violations"`
	SoftViolations  int            `db:"soft_violations"`
	Generations     int            `db:"generations"`
	DurationSeconds float64        `db:"duration_seconds"`
	Genes           types.JSONText `db:"genes"`
	History         types.JSONText `db:"history"`
	CategoryCounts  types.JSONText `db:"category_counts"`
	CategoryPenalty types.JSONText `db:"category_penalty"`
	CreatedAt       time.Time      `db:"created_at"`
}
