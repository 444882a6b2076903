package rewrite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/doismellburning/samoyed-level/internal/gcode"
)

const defaultG0Feed = 300.0

var bareFeedRE = regexp.MustCompile(`^F(-?[0-9]*\.?[0-9]+)\b`)
var leadingLetterRE = regexp.MustCompile(`^([A-Z])`)

// ModalExpand makes one filtered, normalized line Marlin-friendly per
// stage 5: bare F-lines become G1 F..., bare X/Y/Z lines inherit the last
// G-code, and G0/G1/G2/G3 F is filled in or recorded per the feed policy.
// g0Feed is the rapid feed appended to an F-less G0 (default 300 when 0).
func ModalExpand(state *State, line string, g0Feed float64) (*gcode.Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if g0Feed == 0 {
		g0Feed = defaultG0Feed
	}

	switch {
	case bareFeedRE.MatchString(line):
		m := bareFeedRE.FindStringSubmatch(line)
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, &gcode.ParseError{Line: line}
		}
		state.LastExplicitFeed = v
		state.HasLastExplicitFeed = true
		state.LastGCode = 1
		state.HasLastGCode = true
		c := gcode.NewG(1)
		c.SetF(v)
		return c, nil

	case leadingLetterRE.MatchString(line) && strings.ContainsAny(line[:1], "XYZ"):
		if !state.HasLastGCode {
			return nil, &FilterDropError{Line: line, Reason: "no modal G-code to inherit"}
		}
		expanded := fmt.Sprintf("G%d %s", state.LastGCode, line)
		c, err := gcode.Parse(expanded)
		if err != nil {
			return nil, err
		}
		applyFeedPolicy(state, c, g0Feed)
		return c, nil

	case strings.HasPrefix(line, "G"):
		c, err := gcode.Parse(line)
		if err != nil {
			return nil, err
		}
		state.LastGCode = c.Code
		state.HasLastGCode = true
		applyFeedPolicy(state, c, g0Feed)
		return c, nil

	case strings.HasPrefix(line, "M"):
		return gcode.Parse(line)

	default:
		return nil, &FilterDropError{Line: line, Reason: "unrecognized leading token"}
	}
}

// applyFeedPolicy implements the G0/G1/G2/G3 feed rules of stage 5.
func applyFeedPolicy(state *State, c *gcode.Command, g0Feed float64) {
	_, hasF := c.GetF()

	switch c.Code {
	case 0:
		if !hasF {
			c.SetF(g0Feed)
			state.ManualFeedSet = true
		}
	case 1, 2, 3:
		if !hasF {
			if state.ManualFeedSet && state.HasLastExplicitFeed {
				c.SetF(state.LastExplicitFeed)
			}
			state.ManualFeedSet = false
		} else {
			f, _ := c.GetF()
			state.LastExplicitFeed = f
			state.HasLastExplicitFeed = true
			state.ManualFeedSet = false
		}
	}
}
