// Package model defines shared data structures.
package model

import "time"

// Config holds the resolved marquee settings after defaults, config file
// and flags have been merged.
type Config struct {
	Texts        []string
	ContentLines []string

	Velocity float64
	// Direction forces the sign of every row when set; otherwise rows
	// alternate.
	Direction *bool
	Copies    int
	Damping   float64
	Stiffness float64
	MapIn     [2]float64
	MapOut    [2]float64
	Clamp     bool
	Margin    float64
	RowHeight float64

	ReducedMotion bool
	ConfigPath    string
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Since  *time.Time
	Last   int
	Window int
}

// RunRecord captures one finished TUI session.
type RunRecord struct {
	StartedAt     time.Time
	EndedAt       time.Time
	Rows          int
	Velocity      float64
	Copies        int
	ReducedMotion bool
	DurationMs    int64
}

// RowRecord stores the frame counters of one marquee row.
type RowRecord struct {
	Row            int
	Text           string
	Frames         int64
	Processed      int64
	Throttled      int64
	Dropped        int64
	Suspended      int64
	DirectionFlips int64
	Distance       float64
	Cycles         float64
}

// RunAggregate summarizes a run for reporting.
type RunAggregate struct {
	RunID      int64
	EndedAt    time.Time
	DurationMs int64
	Rows       int
	Frames     int64
	Processed  int64
	Distance   float64
	Cycles     float64
}

// RowTotal aggregates row counters across runs.
type RowTotal struct {
	Text           string
	Runs           int
	Frames         int64
	Processed      int64
	Throttled      int64
	Dropped        int64
	Suspended      int64
	DirectionFlips int64
	Distance       float64
	Cycles         float64
}
