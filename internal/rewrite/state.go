// Package rewrite implements the streaming G-code pipeline: comment
// filtering, Marlin-friendly modal expansion, leveling-aware segmentation
// of linear and circular motion, optional precision reduction and Z-rate
// limiting, and dispatch to a line-oriented sink.
package rewrite

import "github.com/doismellburning/samoyed-level/internal/geom"

// State is the rewriter's modal state, named explicitly per the design
// notes rather than hidden as fields on a controller god-object. A zero
// State is ready to use.
type State struct {
	LastGCode    int
	HasLastGCode bool

	LastExplicitFeed    float64
	HasLastExplicitFeed bool

	ManualFeedSet bool

	LastLeveledPoint    geom.Point
	HasLastLeveledPoint bool

	Machine geom.Point
	Work    geom.Point
}

// Stats accumulates counters a caller may want after a run: lines read,
// commands dispatched, drops and parse errors encountered.
type Stats struct {
	LinesTotal     int
	LinesRead      int
	CommandsSent   int
	FilterDrops    int
	ParseErrors    int
	PrecisionWarns int
}
