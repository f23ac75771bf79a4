package layout

// Rect is an axis aligned rectangle in document coordinates. Lines start at
// x = 0, so scaling X and Width together stretches a line in place.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Right() float64   { return r.X + r.Width }
func (r Rect) Bottom() float64  { return r.Y + r.Height }
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return r.X <= x && x <= r.Right() && r.Y <= y && y <= r.Bottom()
}

// ScaleHorBy scales the horizontal position and extent by scale.
func (r *Rect) ScaleHorBy(scale float64) {
	r.X *= scale
	r.Width *= scale
}

// centeredIn returns a rect of the given width and height centered
// horizontally in r, with its top at y.
func centeredIn(r Rect, width, y, height float64) Rect {
	return Rect{X: r.X + (r.Width-width)/2, Y: y, Width: width, Height: height}
}
