package cell

import "testing"

func TestNewFaceKeyOrdering(t *testing.T) {
	tests := []struct {
		name string
		axis Axis
		c    Cell
		low  bool
		want FaceKey
	}{
		{"x low", AxisX, Cell{2, 3, 4}, true, FaceKey{AxisX, 2, 3, 4}},
		{"x high", AxisX, Cell{2, 3, 4}, false, FaceKey{AxisX, 3, 3, 4}},
		{"y low", AxisY, Cell{2, 3, 4}, true, FaceKey{AxisY, 3, 2, 4}},
		{"y high", AxisY, Cell{2, 3, 4}, false, FaceKey{AxisY, 4, 2, 4}},
		{"z low", AxisZ, Cell{2, 3, 4}, true, FaceKey{AxisZ, 4, 2, 3}},
		{"z high", AxisZ, Cell{2, 3, 4}, false, FaceKey{AxisZ, 5, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFaceKey(tt.axis, tt.c, tt.low)
			if got != tt.want {
				t.Errorf("NewFaceKey(%v, %v, %v) = %+v, want %+v", tt.axis, tt.c, tt.low, got, tt.want)
			}
		})
	}
}

func TestSharedFaceIdentity(t *testing.T) {
	// The high face of (0,0,0) along X must equal the low face of (1,0,0).
	a := NewFaceKey(AxisX, Cell{0, 0, 0}, false)
	b := NewFaceKey(AxisX, Cell{1, 0, 0}, true)
	if a != b {
		t.Errorf("shared face mismatch: %+v != %+v", a, b)
	}
}

func TestCellAddScale(t *testing.T) {
	c := Cell{1, 2, 3}
	if got := c.Add(Cell{10, 20, 30}); got != (Cell{11, 22, 33}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := c.Scale(3); got != (Cell{3, 6, 9}) {
		t.Errorf("Scale: got %+v", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := Newf(InvalidArgument, "test", "inner")
	wrapped := Wrap(InvalidFormat, "outer", cause, "wrapping")
	if wrapped.Unwrap() != error(cause) {
		t.Errorf("Unwrap did not return the wrapped cause")
	}
	if wrapped.Kind != InvalidFormat {
		t.Errorf("Kind = %v, want InvalidFormat", wrapped.Kind)
	}
}
