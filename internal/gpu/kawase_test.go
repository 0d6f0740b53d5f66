package gpu

import "testing"

func TestKawasePlanSizes(t *testing.T) {
	cases := []struct {
		w, h uint32
		n    int
		want []targetSize
	}{
		{1920, 1080, 3, []targetSize{{960, 540}, {480, 270}, {240, 135}}},
		{2, 2, 2, []targetSize{{1, 1}, {1, 1}}},
		{1, 1, 8, []targetSize{{1, 1}, {1, 1}, {1, 1}, {1, 1}, {1, 1}, {1, 1}, {1, 1}, {1, 1}}},
	}
	for _, c := range cases {
		got := kawasePlan(c.w, c.h, c.n)
		if len(got) != len(c.want) {
			t.Fatalf("kawasePlan(%d,%d,%d): got %d sizes, want %d", c.w, c.h, c.n, len(got), len(c.want))
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("kawasePlan(%d,%d,%d)[%d] = %+v, want %+v", c.w, c.h, c.n, i, got[i], c.want[i])
			}
		}
	}
}

func TestKawasePlanNeverZero(t *testing.T) {
	for n := 1; n <= 8; n++ {
		for _, sz := range kawasePlan(4, 4, n) {
			if sz.W < 1 || sz.H < 1 {
				t.Fatalf("kawasePlan(4,4,%d) produced zero dimension: %+v", n, sz)
			}
		}
	}
}

func TestKawasePlanLength(t *testing.T) {
	for n := 1; n <= 8; n++ {
		sizes := kawasePlan(1920, 1080, n)
		if len(sizes) != n {
			t.Fatalf("kawasePlan with n=%d returned %d sizes", n, len(sizes))
		}
	}
}
