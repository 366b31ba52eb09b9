package raster

import (
	"image"
	"image/color"
)

// FloodFill replaces the 4-connected region of pixels exactly matching the
// seed pixel's RGBA value with fill and returns the number of pixels changed.
// A seed outside the buffer, or a fill equal to the seed colour, changes
// nothing.
func (s *Surface) FloodFill(seed image.Point, fill color.RGBA) int {
	b := s.img.Bounds()
	if !seed.In(b) {
		return 0
	}
	target := s.img.RGBAAt(seed.X, seed.Y)
	if target == fill {
		return 0
	}
	w, h := b.Dx(), b.Dy()
	pix := s.img.Pix
	stride := s.img.Stride
	matches := func(x, y int) bool {
		o := y*stride + x*4
		return pix[o] == target.R && pix[o+1] == target.G && pix[o+2] == target.B && pix[o+3] == target.A
	}

	// Pixels are marked when pushed so each one enters the stack at most once.
	visited := make([]bool, w*h)
	stack := make([]int, 0, 1024)
	push := func(x, y int) {
		i := y*w + x
		if visited[i] {
			return
		}
		visited[i] = true
		stack = append(stack, i)
	}
	push(seed.X-b.Min.X, seed.Y-b.Min.Y)

	filled := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		if !matches(x, y) {
			continue
		}
		o := y*stride + x*4
		pix[o], pix[o+1], pix[o+2], pix[o+3] = fill.R, fill.G, fill.B, fill.A
		filled++
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}
	return filled
}
