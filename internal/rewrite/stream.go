package rewrite

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doismellburning/samoyed-level/internal/applog"
	"github.com/doismellburning/samoyed-level/internal/config"
	"github.com/doismellburning/samoyed-level/internal/gcode"
	"github.com/doismellburning/samoyed-level/internal/level"
)

// Sink is the narrow seam the rewriter needs to dispatch a fully rewritten
// line: send it and wait for completion. *marlin.Controller satisfies
// this interface structurally.
type Sink interface {
	Send(ctx context.Context, line string) error
}

// ProgressFunc reports streaming progress in source lines.
type ProgressFunc func(linesDone, linesTotal int)

// ErrUserAbort is cooperative cancellation, never logged as an error.
var ErrUserAbort = errors.New("rewrite: stream aborted by user")

// CountLines performs the stage-1 counting pre-pass.
func CountLines(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// StreamFile runs the full ten-stage pipeline of §4.E over the program
// file at path, dispatching every rewritten line to sink. surf may be nil,
// in which case stage 6 (leveling segmentation) never triggers regardless
// of cfg.UseZLevelingData.
func StreamFile(ctx context.Context, path string, cfg config.Params, surf level.Surface, sink Sink, log applog.Logger, progress ProgressFunc) (*Stats, error) {
	if log == nil {
		log = applog.Noop()
	}

	countFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rewrite: counting pre-pass: %w", err)
	}
	total, err := CountLines(countFile)
	countFile.Close()
	if err != nil {
		return nil, fmt.Errorf("rewrite: counting pre-pass: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stats := &Stats{LinesTotal: total}
	state := &State{}
	fourthLetter := cfg.FourthAxisLetter()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return stats, ErrUserAbort
		}

		original := scanner.Text()
		stats.LinesRead++

		line, skip := applyFilterStages(cfg, original, stats, log)
		if skip {
			continue
		}
		if line == "" {
			continue
		}

		cmd, merr := ModalExpand(state, line, cfg.G0Feed)
		if merr != nil {
			var perr *gcode.ParseError
			var fderr *FilterDropError
			switch {
			case errors.As(merr, &perr):
				stats.ParseErrors++
				log.Warn("discarding unparseable line", "line", original, "err", merr)
				continue
			case errors.As(merr, &fderr):
				stats.FilterDrops++
				log.Warn("dropped line", "line", original, "err", merr)
				continue
			default:
				return stats, merr
			}
		}
		if cmd == nil {
			continue
		}

		segmented := []*gcode.Command{cmd}
		if surf != nil && cfg.UseZLevelingData {
			segmented, err = Segment(state, cmd, surf, cfg.ZLevelingOffset, fourthLetter)
			if err != nil {
				return stats, err
			}
		}

		for _, sc := range segmented {
			// Z-rate limiting (stage 8) runs before precision reduction
			// (stage 7) here, reversed from the spec's stage numbering: it
			// operates on a *gcode.Command and can split one command into
			// two serialized lines, while precision reduction operates on
			// already-serialized text. Running it first means precision
			// reduction sees, and trims, the final lines actually sent.
			outCmds := []*gcode.Command{sc}
			if cfg.ZRateLimit && sc.Kind == gcode.GCommand {
				outCmds = ZRateLimit(sc, cfg.ZRateLimitAmount, cfg.XYRateAmount)
			}

			for _, oc := range outCmds {
				text := oc.String(fourthLetter)

				if cfg.ReducePrecision {
					reduced, perr := ReducePrecision(text, cfg.GrblLineBufferLen)
					if perr != nil {
						stats.PrecisionWarns++
						log.Warn("precision reduction insufficient", "line", text, "err", perr)
					}
					text = reduced
				}

				trackCoordinates(state, oc)

				if err := sink.Send(ctx, text); err != nil {
					return stats, err
				}
				stats.CommandsSent++
			}
		}

		if progress != nil {
			progress(stats.LinesRead, stats.LinesTotal)
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}

// applyFilterStages runs stages 2-4, all gated on FilterFileCommands.
func applyFilterStages(cfg config.Params, line string, stats *Stats, log applog.Logger) (out string, skip bool) {
	if !cfg.FilterFileCommands {
		return strings.TrimSpace(line), false
	}

	line = StripComment(line)
	line = NormalizeSpacing(line)

	filtered, err := FilterAllowed(line, AllowedG, AllowedM)
	if err != nil {
		stats.FilterDrops++
		log.Warn("dropped line", "line", line, "err", err)
		return "", true
	}
	return filtered, false
}

// trackCoordinates implements stage 9: update the rewriter's own
// (machine, work) snapshot from an emitted motion command, since Marlin
// has no asynchronous position report.
func trackCoordinates(state *State, c *gcode.Command) {
	if c.Kind != gcode.GCommand {
		return
	}
	switch c.Code {
	case 0, 1, 2, 3:
	default:
		return
	}

	if x, ok := c.GetX(); ok {
		state.Machine.X = x
		state.Work.X = x
	}
	if y, ok := c.GetY(); ok {
		state.Machine.Y = y
		state.Work.Y = y
	}
	if z, ok := c.GetZ(); ok {
		state.Machine.Z = z
		state.Work.Z = z
	}
}
