package level

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Commander is the narrow seam the probe driver needs from the controller:
// send a line and wait for completion, or send a probe command and parse
// its Z reply. *marlin.Controller satisfies this interface; tests can
// supply a fake.
type Commander interface {
	Send(ctx context.Context, line string) error
	Probe(ctx context.Context) (float64, error)
}

// ErrAborted is returned when the context is cancelled mid-probe. No
// interpolator is built and any partial grid is discarded.
var ErrAborted = errors.New("level: probing aborted")

// LevelingError reports a probe reply that could not be parsed, or a grid
// that cannot support the requested algorithm.
type LevelingError struct {
	Reason string
}

func (e *LevelingError) Error() string { return "level: " + e.Reason }

// Request describes one probing run: the rectangular extent, the grid
// resolution, and the motion parameters used while walking it.
type Request struct {
	Algorithm Algorithm

	Left, Right, Top, Bottom float64
	Nx, Ny                   int

	StartZ      float64
	TravelFeed  float64
	ZSafe       float64
	RetractFeed float64 // fixed slow feedrate used for the post-probe retract
	InitialOffset float64
}

const defaultRetractFeed = 50.0

// ProgressFunc is called after each cell is probed, with the number of
// cells completed so far and the total cell count.
type ProgressFunc func(cellsDone, totalCells int)

// linspace returns n uniform divisions of [lo, hi]. When n == 1 the
// interval is the full length and the single tick sits at lo (offset 0
// into the extent).
func linspace(lo, hi float64, n int) []float64 {
	ticks := make([]float64, n)
	if n == 1 {
		ticks[0] = lo
		return ticks
	}
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		ticks[i] = lo + float64(i)*step
	}
	return ticks
}

// Probe performs a serpentine grid probe and constructs the concrete
// Surface variant selected by req.Algorithm. On user abort (ctx cancelled)
// it discards the partial grid and returns ErrAborted. A hard probe-reply
// parse failure aborts the whole run as a *LevelingError.
func Probe(ctx context.Context, c Commander, req Request, progress ProgressFunc) (Surface, error) {
	if req.Nx < 1 || req.Ny < 1 {
		return nil, &LevelingError{Reason: fmt.Sprintf("grid dimensions must be >= 1, got nx=%d ny=%d", req.Nx, req.Ny)}
	}

	retractFeed := req.RetractFeed
	if retractFeed == 0 {
		retractFeed = defaultRetractFeed
	}

	xs := linspace(req.Left, req.Right, req.Nx)
	ys := linspace(req.Bottom, req.Top, req.Ny)
	zs := make([]float64, req.Nx*req.Ny)

	send := func(line string) error {
		if err := c.Send(ctx, line); err != nil {
			if ctx.Err() != nil {
				return ErrAborted
			}
			return err
		}
		return nil
	}

	if err := send("G90"); err != nil {
		return nil, err
	}
	if err := send("G28 Z0"); err != nil {
		return nil, err
	}
	if err := send(fmt.Sprintf("G0 X0 Y0 F%g", req.TravelFeed)); err != nil {
		return nil, err
	}
	if err := send(fmt.Sprintf("G0 Z%g F%g", req.StartZ, req.TravelFeed)); err != nil {
		return nil, err
	}

	total := req.Nx * req.Ny
	done := 0

	for i := 0; i < req.Nx; i++ {
		jOrder := makeColumnOrder(req.Ny, i%2 == 1)

		for _, j := range jOrder {
			if ctx.Err() != nil {
				return nil, ErrAborted
			}

			if err := send(fmt.Sprintf("G0 X%g Y%g F%g", xs[i], ys[j], req.TravelFeed)); err != nil {
				return nil, err
			}

			z, err := c.Probe(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ErrAborted
				}
				return nil, &LevelingError{Reason: fmt.Sprintf("cell (%d,%d): %s", i, j, err)}
			}
			if math.IsNaN(z) {
				return nil, &LevelingError{Reason: fmt.Sprintf("cell (%d,%d): probe reply did not contain a Z value", i, j)}
			}

			zs[j*req.Nx+i] = z

			if err := send(fmt.Sprintf("G1 Z%g F%g", z+req.ZSafe, retractFeed)); err != nil {
				return nil, err
			}

			done++
			if progress != nil {
				progress(done, total)
			}
		}
	}

	if err := send("G28 Z0"); err != nil {
		return nil, err
	}
	if err := send(fmt.Sprintf("G0 X0 Y0 F%g", req.TravelFeed)); err != nil {
		return nil, err
	}

	switch req.Algorithm {
	case Single:
		return NewSingle(zs[0]), nil
	case Linear:
		return NewLinear(xs, ys, zs, req.InitialOffset)
	case Bicubic:
		if req.Nx < 2 || req.Ny < 2 {
			return nil, &LevelingError{Reason: fmt.Sprintf("bicubic requires nx,ny >= 2, got nx=%d ny=%d", req.Nx, req.Ny)}
		}
		return NewBicubic(xs, ys, zs, req.InitialOffset)
	default:
		return nil, &LevelingError{Reason: fmt.Sprintf("unknown algorithm %v", req.Algorithm)}
	}
}

// makeColumnOrder returns 0..n-1, reversed when descending is true. Column
// 0 ascends Y, column 1 descends, and so on, so the tool never makes a
// diagonal return traverse.
func makeColumnOrder(n int, descending bool) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if descending {
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			order[l], order[r] = order[r], order[l]
		}
	}
	return order
}
