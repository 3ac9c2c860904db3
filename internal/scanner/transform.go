package scanner

// Transform maps an image-space rectangle into the viewport's display space.
// The camera layer supplies it; resolution and rotation are its concern.
type Transform func(Rect) Rect

// Identity returns the rectangle unchanged.
func Identity(r Rect) Rect { return r }

// Affine scales then offsets both axes. Negative scales mirror the axis, so
// the result is re-normalised to keep Left <= Right and Top <= Bottom.
func Affine(scaleX, scaleY, offsetX, offsetY float64) Transform {
	return func(r Rect) Rect {
		out := Rect{
			Left:   r.Left*scaleX + offsetX,
			Top:    r.Top*scaleY + offsetY,
			Right:  r.Right*scaleX + offsetX,
			Bottom: r.Bottom*scaleY + offsetY,
		}
		if out.Left > out.Right {
			out.Left, out.Right = out.Right, out.Left
		}
		if out.Top > out.Bottom {
			out.Top, out.Bottom = out.Bottom, out.Top
		}
		return out
	}
}
