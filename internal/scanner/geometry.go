// Package scanner turns per-frame barcode detections into recognition states.
//
// A Processor receives the detections of one camera frame at a time, keeps
// only those that are large enough and sit inside the scanning viewport, and
// requires the same value over several consecutive frames before reporting it
// as confirmed.
package scanner

// Rect is an axis-aligned rectangle. Left/Top are inclusive minimums.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Area is zero for degenerate or inverted rectangles.
func (r Rect) Area() float64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Contains reports whether inner lies fully within r, edges included.
func (r Rect) Contains(inner Rect) bool {
	return inner.Left >= r.Left &&
		inner.Top >= r.Top &&
		inner.Right <= r.Right &&
		inner.Bottom <= r.Bottom
}

// Validator decides whether a detected barcode box is usable for a viewport.
type Validator struct {
	// MinAreaRatio is the fraction of the scanner box area a barcode must exceed.
	MinAreaRatio float64
}

// DefaultMinAreaRatio is the reference size policy.
const DefaultMinAreaRatio = 0.05

// IsLargeEnough reports whether barcodeBox covers more than MinAreaRatio of
// scannerBox. Zero-area boxes are never large enough.
func (v Validator) IsLargeEnough(scannerBox, barcodeBox Rect) bool {
	scannerArea := scannerBox.Area()
	barcodeArea := barcodeBox.Area()
	if scannerArea == 0 || barcodeArea == 0 {
		return false
	}
	return barcodeArea > scannerArea*v.MinAreaRatio
}

// IsInsideScannerBox reports whether barcodeBox, already in display space, is
// fully contained in scannerBox.
func (v Validator) IsInsideScannerBox(scannerBox, barcodeBox Rect) bool {
	if barcodeBox.Area() == 0 {
		return false
	}
	return scannerBox.Contains(barcodeBox)
}
