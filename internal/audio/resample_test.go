package audio

import "testing"

func TestResampleIdentity(t *testing.T) {
	in := []int16{1, 2, 3, 4}
	out := Resample(in, 8000, 8000)
	if len(out) != len(in) {
		t.Fatalf("identity resample changed length: %d", len(out))
	}
}

func TestResampleDownsample(t *testing.T) {
	in := make([]int16, 160)
	for i := range in {
		in[i] = int16(i * 100)
	}
	out := Resample(in, 16000, 8000)
	if len(out) != 80 {
		t.Fatalf("want 80 samples, got %d", len(out))
	}
	// A linear ramp survives linear interpolation.
	if out[0] != 0 {
		t.Errorf("first sample: want 0, got %d", out[0])
	}
	if out[40] < 7000 || out[40] > 9000 {
		t.Errorf("midpoint out of range: %d", out[40])
	}
}

func TestResampleUpsample(t *testing.T) {
	in := []int16{0, 1000}
	out := Resample(in, 8000, 16000)
	if len(out) != 4 {
		t.Fatalf("want 4 samples, got %d", len(out))
	}
	if out[1] != 500 {
		t.Errorf("interpolated sample: want 500, got %d", out[1])
	}
}
