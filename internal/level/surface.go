package level

import "fmt"

// Surface is the shared read interface over the three interpolator
// variants: grid accessors, extrema (via Grid), lookup, algorithm tag, and
// offset recomputation.
type Surface interface {
	Algorithm() Algorithm
	Grid() *Grid
	// Interpolate returns the height at (x, y) and whether the query hit
	// a sample exactly (both axes on a grid tick).
	Interpolate(x, y float64) (z float64, exact bool)
	CalculateOffset(newZ float64) float64
	XGridSize() float64
	YGridSize() float64
}

type singleSurface struct{ grid *Grid }

// NewSingle builds a SINGLE-variant surface that always returns z. It is
// used as a tool-touch offset and is excluded from 2-D rendering.
func NewSingle(z float64) Surface {
	g, _ := NewGrid([]float64{0}, []float64{0}, []float64{z}, 0)
	return &singleSurface{grid: g}
}

func (s *singleSurface) Algorithm() Algorithm                { return Single }
func (s *singleSurface) Grid() *Grid                         { return s.grid }
func (s *singleSurface) Interpolate(float64, float64) (float64, bool) { return s.grid.Zs[0], true }
func (s *singleSurface) CalculateOffset(newZ float64) float64 { return s.grid.CalculateOffset(newZ) }
func (s *singleSurface) XGridSize() float64                  { return s.grid.XGridSize() }
func (s *singleSurface) YGridSize() float64                  { return s.grid.YGridSize() }

type linearSurface struct{ grid *Grid }

// NewLinear builds a bilinear (LINEAR) surface from a sample grid.
func NewLinear(xs, ys, zs []float64, initialOffset float64) (Surface, error) {
	g, err := NewGrid(xs, ys, zs, initialOffset)
	if err != nil {
		return nil, err
	}
	return &linearSurface{grid: g}, nil
}

func (s *linearSurface) Algorithm() Algorithm                { return Linear }
func (s *linearSurface) Grid() *Grid                         { return s.grid }
func (s *linearSurface) CalculateOffset(newZ float64) float64 { return s.grid.CalculateOffset(newZ) }
func (s *linearSurface) XGridSize() float64                  { return s.grid.XGridSize() }
func (s *linearSurface) YGridSize() float64                  { return s.grid.YGridSize() }

func (s *linearSurface) Interpolate(x, y float64) (float64, bool) {
	g := s.grid

	xlo, xhi, xExact := bracketLinear(g.Xs, x)
	ylo, yhi, yExact := bracketLinear(g.Ys, y)

	if xExact && yExact {
		return g.At(xlo, ylo), true
	}

	if xExact {
		t := 0.0
		if ylo != yhi {
			t = normalize(y, g.Ys[ylo], g.Ys[yhi])
		}
		return lerp(g.At(xlo, ylo), g.At(xlo, yhi), t), false
	}

	if yExact {
		t := 0.0
		if xlo != xhi {
			t = normalize(x, g.Xs[xlo], g.Xs[xhi])
		}
		return lerp(g.At(xlo, ylo), g.At(xhi, ylo), t), false
	}

	ty := normalize(y, g.Ys[ylo], g.Ys[yhi])
	tx := normalize(x, g.Xs[xlo], g.Xs[xhi])

	zLoX := lerp(g.At(xlo, ylo), g.At(xlo, yhi), ty)
	zHiX := lerp(g.At(xhi, ylo), g.At(xhi, yhi), ty)

	return lerp(zLoX, zHiX, tx), false
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

type bicubicSurface struct{ grid *Grid }

// NewBicubic builds a Catmull-Rom bicubic surface. Requires nx,ny >= 2.
func NewBicubic(xs, ys, zs []float64, initialOffset float64) (Surface, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("level: bicubic requires nx,ny >= 2, got nx=%d ny=%d", len(xs), len(ys))
	}
	g, err := NewGrid(xs, ys, zs, initialOffset)
	if err != nil {
		return nil, err
	}
	return &bicubicSurface{grid: g}, nil
}

func (s *bicubicSurface) Algorithm() Algorithm                { return Bicubic }
func (s *bicubicSurface) Grid() *Grid                         { return s.grid }
func (s *bicubicSurface) CalculateOffset(newZ float64) float64 { return s.grid.CalculateOffset(newZ) }
func (s *bicubicSurface) XGridSize() float64                  { return s.grid.XGridSize() }
func (s *bicubicSurface) YGridSize() float64                  { return s.grid.YGridSize() }

// cubicBlend is the Catmull-Rom blend of four control values at parameter
// t in [0,1] between p1 and p2.
func cubicBlend(p0, p1, p2, p3, t float64) float64 {
	return p1 + 0.5*t*(p2-p0+t*(2*p0-5*p1+4*p2-p3+t*(3*(p1-p2)+p3-p0)))
}

func (s *bicubicSurface) Interpolate(x, y float64) (float64, bool) {
	g := s.grid

	xa, xb, xc, xd, xExact := bracketCubic(g.Xs, x)
	ya, yb, yc, yd, yExact := bracketCubic(g.Ys, y)

	if xExact && yExact {
		return g.At(xb, yb), true
	}

	if xExact {
		t := 0.0
		if yb != yc {
			t = normalize(y, g.Ys[yb], g.Ys[yc])
		}
		return cubicBlend(g.At(xb, ya), g.At(xb, yb), g.At(xb, yc), g.At(xb, yd), t), false
	}

	if yExact {
		t := 0.0
		if xb != xc {
			t = normalize(x, g.Xs[xb], g.Xs[xc])
		}
		return cubicBlend(g.At(xa, yb), g.At(xb, yb), g.At(xc, yb), g.At(xd, yb), t), false
	}

	tx := normalize(x, g.Xs[xb], g.Xs[xc])
	ty := normalize(y, g.Ys[yb], g.Ys[yc])

	yIdx := [4]int{ya, yb, yc, yd}
	var rowVals [4]float64
	for i, yi := range yIdx {
		rowVals[i] = cubicBlend(g.At(xa, yi), g.At(xb, yi), g.At(xc, yi), g.At(xd, yi), tx)
	}

	return cubicBlend(rowVals[0], rowVals[1], rowVals[2], rowVals[3], ty), false
}

// LinearFromSurface builds a LINEAR surface from any non-SINGLE surface.
func LinearFromSurface(s Surface) (Surface, error) {
	if s.Algorithm() == Single {
		return nil, fmt.Errorf("level: cannot convert SINGLE to LINEAR")
	}
	g := s.Grid()
	return NewLinear(g.Xs, g.Ys, g.Zs, g.InitialOffset)
}

// BicubicFromSurface builds a BICUBIC surface from any non-SINGLE surface
// with nx,ny >= 2.
func BicubicFromSurface(s Surface) (Surface, error) {
	if s.Algorithm() == Single {
		return nil, fmt.Errorf("level: cannot convert SINGLE to BICUBIC")
	}
	g := s.Grid()
	return NewBicubic(g.Xs, g.Ys, g.Zs, g.InitialOffset)
}
