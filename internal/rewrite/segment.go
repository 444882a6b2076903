package rewrite

import (
	"fmt"
	"math"

	"github.com/doismellburning/samoyed-level/internal/gcode"
	"github.com/doismellburning/samoyed-level/internal/geom"
	"github.com/doismellburning/samoyed-level/internal/level"
)

// mmPerArcSegment is the fixed chord length used to subdivide circular
// motion, matching Marlin's own MM_PER_ARC_SEGMENT.
const mmPerArcSegment = 0.5

// Segment applies the leveling segmentation of stage 6 so Z tracks the
// surface curvature: straight motion longer than a third of the smaller
// grid cell dimension is split into equal sub-segments, and circular motion
// is split into chords of mmPerArcSegment whatever the cell size. Non-motion
// commands, and motion commands with no interpolator available, pass
// through unchanged.
func Segment(state *State, c *gcode.Command, surf level.Surface, zLevelingOffset float64, fourthAxisLetter byte) ([]*gcode.Command, error) {
	if surf == nil || c.Kind != gcode.GCommand {
		return []*gcode.Command{c}, nil
	}

	switch c.Code {
	case 0, 1:
		_, hasX := c.GetX()
		_, hasY := c.GetY()
		_, hasZ := c.GetZ()
		if !hasX && !hasY && !hasZ {
			return []*gcode.Command{c}, nil
		}
		return segmentStraight(state, c, surf, zLevelingOffset, fourthAxisLetter), nil

	case 2:
		return segmentArc(state, c, true, surf, zLevelingOffset, fourthAxisLetter)

	case 3:
		return segmentArc(state, c, false, surf, zLevelingOffset, fourthAxisLetter)

	default:
		return []*gcode.Command{c}, nil
	}
}

func (s *State) startPoint() geom.Point {
	if s.HasLastLeveledPoint {
		return s.LastLeveledPoint
	}
	return geom.Point{}
}

func lerpF(a, b, t float64) float64 { return a + (b-a)*t }

func copyExtraParams(dst, src *gcode.Command, fourthAxisLetter byte) {
	if f, ok := src.GetF(); ok {
		dst.SetF(f)
	}
	if fourthAxisLetter != 0 {
		if v, ok := src.GetFourth(fourthAxisLetter); ok {
			dst.Set(fourthAxisLetter, v)
		}
	}
}

// segmentStraight implements the G0/G1 case of stage 6.
func segmentStraight(state *State, c *gcode.Command, surf level.Surface, zOffset float64, fourthAxisLetter byte) []*gcode.Command {
	start := state.startPoint()

	targetX, ok := c.GetX()
	if !ok {
		targetX = start.X
	}
	targetY, ok := c.GetY()
	if !ok {
		targetY = start.Y
	}
	targetZ, ok := c.GetZ()
	if !ok {
		targetZ = start.Z
	}

	dx := targetX - start.X
	dy := targetY - start.Y
	length := math.Hypot(dx, dy)

	sMax := math.Min(surf.XGridSize(), surf.YGridSize()) / 3

	segments := 1
	if sMax > 0 && length > sMax {
		segments = int(math.Ceil(length / sMax))
	}

	out := make([]*gcode.Command, 0, segments)
	for i := 1; i <= segments; i++ {
		t := float64(i) / float64(segments)
		px := lerpF(start.X, targetX, t)
		py := lerpF(start.Y, targetY, t)
		pz := lerpF(start.Z, targetZ, t)

		zh, _ := surf.Interpolate(px, py)
		pz = pz + zh - zOffset

		sub := gcode.NewG(c.Code)
		sub.SetX(px)
		sub.SetY(py)
		sub.SetZ(pz)

		if i == segments {
			copyExtraParams(sub, c, fourthAxisLetter)
		}
		out = append(out, sub)
	}

	last := out[len(out)-1]
	lz, _ := last.GetZ()
	state.LastLeveledPoint = geom.Point{X: targetX, Y: targetY, Z: lz}
	state.HasLastLeveledPoint = true

	return out
}

// segmentArc implements the G2 (clockwise)/G3 (counter-clockwise) case of
// stage 6.
func segmentArc(state *State, c *gcode.Command, clockwise bool, surf level.Surface, zOffset float64, fourthAxisLetter byte) ([]*gcode.Command, error) {
	start := state.startPoint()

	targetX, ok := c.GetX()
	if !ok {
		targetX = start.X
	}
	targetY, ok := c.GetY()
	if !ok {
		targetY = start.Y
	}
	targetZ, ok := c.GetZ()
	if !ok {
		targetZ = start.Z
	}

	i, _ := c.Get('I')
	j, _ := c.Get('J')
	radius := math.Hypot(i, j)
	if radius == 0 {
		return nil, fmt.Errorf("rewrite: degenerate arc, I=%g J=%g", i, j)
	}

	center := geom.Point{X: start.X + i, Y: start.Y + j, Z: start.Z}
	r := geom.Vector{X: -i, Y: -j}
	rt := geom.Vector{X: targetX - center.X, Y: targetY - center.Y}

	angular := math.Atan2(r.X*rt.Y-r.Y*rt.X, r.X*rt.X+r.Y*rt.Y)
	if angular < 0 {
		angular += 2 * math.Pi
	}
	if clockwise {
		angular -= 2 * math.Pi
	}

	deltaZ := targetZ - start.Z
	mmOfTravel := math.Hypot(math.Abs(angular)*radius, math.Abs(deltaZ))
	segments := int(math.Floor(mmOfTravel / mmPerArcSegment))

	out := make([]*gcode.Command, 0, segments+1)

	if segments > 0 {
		theta := angular / float64(segments)
		f, hasF := c.GetF()

		for k := 1; k <= segments; k++ {
			ang := theta * float64(k)
			rx := r.X*math.Cos(ang) - r.Y*math.Sin(ang)
			ry := r.X*math.Sin(ang) + r.Y*math.Cos(ang)

			px := center.X + rx
			py := center.Y + ry
			pz := start.Z + deltaZ*float64(k)/float64(segments)

			zh, _ := surf.Interpolate(px, py)
			pz = pz + zh - zOffset

			sub := gcode.NewG(1)
			sub.SetX(px)
			sub.SetY(py)
			sub.SetZ(pz)
			if k == 1 && hasF {
				sub.SetF(f)
			}
			out = append(out, sub)
		}
	}

	final := gcode.NewG(1)
	final.SetX(targetX)
	final.SetY(targetY)
	zh, _ := surf.Interpolate(targetX, targetY)
	finalZ := targetZ + zh - zOffset
	final.SetZ(finalZ)
	copyExtraParams(final, c, fourthAxisLetter)
	out = append(out, final)

	state.LastLeveledPoint = geom.Point{X: targetX, Y: targetY, Z: finalZ}
	state.HasLastLeveledPoint = true

	return out, nil
}
