package solver

import "testing"

func TestDiscountParamsFirstIteration(t *testing.T) {
	d := newDiscountParams(1)
	if d.alphaT != 0 {
		t.Errorf("expected alphaT=0 at iteration 1 (t_alpha=0), got %v", d.alphaT)
	}
	if d.betaT != 0.5 {
		t.Errorf("expected betaT=0.5 always, got %v", d.betaT)
	}
}

func TestDiscountParamsBetaIsConstant(t *testing.T) {
	for _, it := range []uint32{1, 2, 10, 1000} {
		d := newDiscountParams(it)
		if d.betaT != 0.5 {
			t.Errorf("iteration %d: betaT = %v, want 0.5", it, d.betaT)
		}
	}
}

func TestDiscountParamsAlphaApproachesOne(t *testing.T) {
	early := newDiscountParams(2)
	late := newDiscountParams(100000)
	if !(late.alphaT > early.alphaT) {
		t.Errorf("expected alphaT to grow with iteration count: early=%v late=%v", early.alphaT, late.alphaT)
	}
	if late.alphaT <= 0.99 {
		t.Errorf("expected alphaT close to 1 after many iterations, got %v", late.alphaT)
	}
}

func TestLeadingZeros32(t *testing.T) {
	cases := map[uint32]uint32{
		1:          31,
		2:          30,
		4:          29,
		0x80000000: 0,
	}
	for in, want := range cases {
		if got := leadingZeros32(in); got != want {
			t.Errorf("leadingZeros32(%d) = %d, want %d", in, got, want)
		}
	}
}
