package layout

import (
	"math"
	"testing"
)

func sized(w, h BoxSizing) IntrinsicSize {
	return IntrinsicSize{Width: w, Height: h}
}

func fixed(w, h float32) IntrinsicSize {
	return sized(Fixed(w), Fixed(h))
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func assertSize(t *testing.T, n Node, want Size) {
	t.Helper()
	if got := n.Size(); !approx(got.Width, want.Width) || !approx(got.Height, want.Height) {
		t.Errorf("%s size = %v, want %v", n.ID(), got, want)
	}
}

func assertPosition(t *testing.T, n Node, want Position) {
	t.Helper()
	if got := n.Position(); !approx(got.X, want.X) || !approx(got.Y, want.Y) {
		t.Errorf("%s position = %v, want %v", n.ID(), got, want)
	}
}

func assertNoErrors(t *testing.T, errs []LayoutError) {
	t.Helper()
	for _, err := range errs {
		t.Errorf("unexpected layout error: %v", err)
	}
}
