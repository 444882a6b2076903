// Package level implements the interpolator family (single-point, bilinear,
// Catmull-Rom bicubic) built from a rectangular grid of probed Z heights,
// and the serpentine probe-and-fit driver that produces that grid.
package level

import "fmt"

// Algorithm names the interpolation strategy a Surface implements.
type Algorithm int

const (
	// Single always returns one stored height; used as a tool-touch
	// offset, excluded from 2-D rendering.
	Single Algorithm = iota
	// Linear is bilinear interpolation across the grid.
	Linear
	// Bicubic is Catmull-Rom bicubic interpolation across the grid.
	Bicubic
)

func (a Algorithm) String() string {
	switch a {
	case Single:
		return "SINGLE"
	case Linear:
		return "LINEAR"
	case Bicubic:
		return "BICUBIC"
	default:
		return "UNKNOWN"
	}
}

// Grid is the immutable sample grid shared by every interpolator variant.
type Grid struct {
	Xs []float64 // strictly increasing, length Nx
	Ys []float64 // strictly increasing, length Ny
	Zs []float64 // row-major, length Nx*Ny, indexed j*Nx+i

	Nx, Ny int

	Zmin, Zmax float64
	// Mean is the arithmetic mean of all samples. The source called this
	// getMedian() while computing and using the mean; this field keeps
	// "arithmetic mean" semantics under an honest name.
	Mean          float64
	InitialOffset float64
}

// NewGrid validates and constructs a Grid from raw axis ticks and a
// row-major height array.
func NewGrid(xs, ys, zs []float64, initialOffset float64) (*Grid, error) {
	nx, ny := len(xs), len(ys)
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("level: grid dimensions must be >= 1, got nx=%d ny=%d", nx, ny)
	}
	if len(zs) != nx*ny {
		return nil, fmt.Errorf("level: expected %d samples, got %d", nx*ny, len(zs))
	}
	if !strictlyIncreasing(xs) {
		return nil, fmt.Errorf("level: xs must be strictly increasing: %v", xs)
	}
	if !strictlyIncreasing(ys) {
		return nil, fmt.Errorf("level: ys must be strictly increasing: %v", ys)
	}

	g := &Grid{
		Xs: append([]float64(nil), xs...),
		Ys: append([]float64(nil), ys...),
		Zs: append([]float64(nil), zs...),
		Nx: nx, Ny: ny,
		InitialOffset: initialOffset,
	}
	g.Zmin, g.Zmax = zs[0], zs[0]
	sum := 0.0
	for _, z := range zs {
		if z < g.Zmin {
			g.Zmin = z
		}
		if z > g.Zmax {
			g.Zmax = z
		}
		sum += z
	}
	g.Mean = sum / float64(len(zs))
	return g, nil
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

// At returns the stored sample at grid indices (i, j).
func (g *Grid) At(i, j int) float64 {
	return g.Zs[j*g.Nx+i]
}

// XGridSize is the "first cell" X spacing used for segmentation sizing.
func (g *Grid) XGridSize() float64 {
	if g.Nx < 2 {
		return 0
	}
	return g.Xs[1] - g.Xs[0]
}

// YGridSize is the "first cell" Y spacing used for segmentation sizing.
func (g *Grid) YGridSize() float64 {
	if g.Ny < 2 {
		return 0
	}
	return g.Ys[1] - g.Ys[0]
}

// CalculateOffset recomputes a constant offset when the surface is
// re-probed at the origin later in a session, absorbing tool-length changes
// without re-probing the whole grid.
func (g *Grid) CalculateOffset(newZ float64) float64 {
	return g.Zs[0] - newZ + g.InitialOffset
}
