package engine

import (
	"context"
	"time"
)

// StepKind identifies a suspension point inside a search
type StepKind string

const (
	StepExpand    StepKind = "expand"    // A* / Dijkstra: before each minimum-node pop
	StepLevel     StepKind = "level"     // BFS: before each level
	StepDirection StepKind = "direction" // DFS: before each direction attempt
	StepPath      StepKind = "path"      // before each final-path mark
)

// Pacer is called at every suspension point. Implementations decide how long
// the search waits so that grid mutations become visible frame by frame.
type Pacer interface {
	Pause(ctx context.Context, algorithm Algorithm, step StepKind)
}

// PacerFunc adapts a function to the Pacer interface
type PacerFunc func(ctx context.Context, algorithm Algorithm, step StepKind)

// Pause calls f
func (f PacerFunc) Pause(ctx context.Context, algorithm Algorithm, step StepKind) {
	f(ctx, algorithm, step)
}

// NoPacer never waits. Headless runs and tests use it.
var NoPacer Pacer = PacerFunc(func(context.Context, Algorithm, StepKind) {})

// Default animation delays
const (
	DefaultAStarExpandDelay    = 100 * time.Microsecond
	DefaultDijkstraExpandDelay = 1 * time.Millisecond
	DefaultLevelDelay          = 50 * time.Millisecond
	DefaultDirectionDelay      = 7 * time.Millisecond
	DefaultPathDelay           = 20 * time.Millisecond
)

// DelayPacer sleeps for a fixed duration per step kind, divided by Speed.
// A done context makes every remaining pause return immediately; the search
// itself still runs to completion.
type DelayPacer struct {
	AStarExpand    time.Duration
	DijkstraExpand time.Duration
	Level          time.Duration
	Direction      time.Duration
	Path           time.Duration
	Speed          float64
}

// NewDelayPacer returns a pacer with the default delays scaled by speed.
// Non-positive speeds are treated as 1.
func NewDelayPacer(speed float64) *DelayPacer {
	if speed <= 0 {
		speed = 1
	}
	return &DelayPacer{
		AStarExpand:    DefaultAStarExpandDelay,
		DijkstraExpand: DefaultDijkstraExpandDelay,
		Level:          DefaultLevelDelay,
		Direction:      DefaultDirectionDelay,
		Path:           DefaultPathDelay,
		Speed:          speed,
	}
}

// Delay returns how long Pause waits for the given step
func (p *DelayPacer) Delay(algorithm Algorithm, step StepKind) time.Duration {
	var d time.Duration
	switch step {
	case StepExpand:
		d = p.AStarExpand
		if algorithm == Dijkstra {
			d = p.DijkstraExpand
		}
	case StepLevel:
		d = p.Level
	case StepDirection:
		d = p.Direction
	case StepPath:
		d = p.Path
	}
	if p.Speed > 0 && p.Speed != 1 {
		d = time.Duration(float64(d) / p.Speed)
	}
	return d
}

// Pause waits for the step's delay or until ctx is done
func (p *DelayPacer) Pause(ctx context.Context, algorithm Algorithm, step StepKind) {
	d := p.Delay(algorithm, step)
	if d <= 0 || ctx.Err() != nil {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
