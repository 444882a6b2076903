package rewrite

import "github.com/doismellburning/samoyed-level/internal/gcode"

// ZRateLimit implements stage 8: a move whose feedrate exceeds
// zRateLimitAmount while moving Z is capped. When no X/Y is present there
// is nothing to separate, so the output is the same single line with F
// capped. Otherwise the move splits into a Z-only line at the capped rate
// followed by an XY-only line at xyRateAmount, since Marlin applies one F
// to the whole vector and would otherwise slow the planar move to match Z.
func ZRateLimit(c *gcode.Command, zRateLimitAmount, xyRateAmount float64) []*gcode.Command {
	_, hasZ := c.GetZ()
	f, hasF := c.GetF()
	if !hasZ || !hasF || f <= zRateLimitAmount {
		return []*gcode.Command{c}
	}

	_, hasX := c.GetX()
	_, hasY := c.GetY()

	if !hasX && !hasY {
		capped := c.Clone()
		capped.SetF(zRateLimitAmount)
		return []*gcode.Command{capped}
	}

	z, _ := c.GetZ()
	zOnly := gcode.NewG(c.Code)
	zOnly.SetZ(z)
	zOnly.SetF(zRateLimitAmount)

	xyOnly := gcode.NewG(c.Code)
	if hasX {
		x, _ := c.GetX()
		xyOnly.SetX(x)
	}
	if hasY {
		y, _ := c.GetY()
		xyOnly.SetY(y)
	}
	xyOnly.SetF(xyRateAmount)

	return []*gcode.Command{zOnly, xyOnly}
}
