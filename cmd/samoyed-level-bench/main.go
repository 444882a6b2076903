// Command samoyed-level-bench is a small standalone inspection tool: it
// builds a synthetic probe grid and a synthetic G-code program, runs them
// through the interpolator and segmenter, and prints a summary - useful
// for checking an interpolation algorithm or the segmenter's chord-length
// behaviour without any hardware attached, in the spirit of the teacher's
// own single-purpose cmd tools (ttcalc, gen_tone).
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/doismellburning/samoyed-level/internal/gcode"
	"github.com/doismellburning/samoyed-level/internal/level"
	"github.com/doismellburning/samoyed-level/internal/rewrite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "samoyed-level-bench: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	nx, ny := 5, 5
	xs := make([]float64, nx)
	ys := make([]float64, ny)
	zs := make([]float64, nx*ny)

	for i := range xs {
		xs[i] = float64(i) * 50
	}
	for j := range ys {
		ys[j] = float64(j) * 50
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			// A gentle saddle, so bilinear and bicubic visibly disagree.
			x, y := xs[i], ys[j]
			zs[j*nx+i] = 0.02*math.Sin(x/40) + 0.015*math.Cos(y/35)
		}
	}

	linear, err := level.NewLinear(xs, ys, zs, 0)
	if err != nil {
		return err
	}
	bicubic, err := level.NewBicubic(xs, ys, zs, 0)
	if err != nil {
		return err
	}

	fmt.Println("grid:", linear.Grid().Nx, "x", linear.Grid().Ny,
		"zmin", linear.Grid().Zmin, "zmax", linear.Grid().Zmax, "mean", linear.Grid().Mean)

	for _, pt := range [][2]float64{{0, 0}, {25, 25}, {60, 110}, {200, 200}} {
		zl, _ := linear.Interpolate(pt[0], pt[1])
		zb, _ := bicubic.Interpolate(pt[0], pt[1])
		fmt.Printf("(%6.1f,%6.1f): linear=%+.5f bicubic=%+.5f delta=%+.5f\n", pt[0], pt[1], zl, zb, zb-zl)
	}

	state := &rewrite.State{}
	move := gcode.NewG(1)
	move.SetX(200)
	move.SetY(200)
	move.SetF(1500)

	segments, err := rewrite.Segment(state, move, linear, 0, 0)
	if err != nil {
		return err
	}
	fmt.Printf("\nsegmented a %.1f-unit travel into %d sub-moves:\n", math.Hypot(200, 200), len(segments))
	for _, s := range segments {
		fmt.Println(" ", s.String(0))
	}

	return nil
}
