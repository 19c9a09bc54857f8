package weather

import (
	"errors"
	"math"
	"testing"
)

func TestResampleIdentity(t *testing.T) {
	data := []float64{0.4, 1.2, 0, 7.5, 3.3}
	got, err := Resample(data, len(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("Resample identity differs at %d: %v vs %v", i, got, data)
		}
	}

	got[0] = 99
	if data[0] == 99 {
		t.Error("Resample identity must return a copy")
	}
}

func TestResamplePreservesEndpoints(t *testing.T) {
	data := []float64{2, 4, 8, 16, 32, 64, 128, 256, 512}
	for n := 2; n <= len(data); n++ {
		got, err := Resample(data, n)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if len(got) != n {
			t.Fatalf("n=%d: got %d samples", n, len(got))
		}
		if got[0] != data[0] || got[n-1] != data[len(data)-1] {
			t.Errorf("n=%d: endpoints %v, %v", n, got[0], got[n-1])
		}
	}
}

func TestResampleInterpolates(t *testing.T) {
	cases := []struct {
		name string
		data []float64
		n    int
		want []float64
	}{
		{"three to two", []float64{1, 2, 3}, 2, []float64{1, 3}},
		{"five to three hits samples", []float64{0, 10, 20, 30, 40}, 3, []float64{0, 20, 40}},
		{"four to three", []float64{0, 3, 6, 9}, 3, []float64{0, 4.5, 9}},
		{"five to four", []float64{0, 1, 0, 1, 0}, 4, []float64{0, 2.0 / 3.0, 2.0 / 3.0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resample(tc.data, tc.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range tc.want {
				if math.Abs(got[i]-tc.want[i]) > 1e-12 {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestResampleRejectsInvalidTargets(t *testing.T) {
	cases := []struct {
		data []float64
		n    int
	}{
		{nil, 0},
		{nil, 2},
		{[]float64{1, 2, 3}, 1},
		{[]float64{1, 2, 3}, 0},
		{[]float64{1, 2, 3}, 4},
	}
	for _, tc := range cases {
		if _, err := Resample(tc.data, tc.n); !errors.Is(err, ErrInvalidResample) {
			t.Errorf("Resample(%v, %d): expected ErrInvalidResample, got %v", tc.data, tc.n, err)
		}
	}
}

func TestApplyCorrection(t *testing.T) {
	in := []float64{0, 0.5, 2}
	got := ApplyCorrection(in, 10)
	want := []float64{0, 5, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if in[1] != 0.5 {
		t.Error("ApplyCorrection must not modify its input")
	}
}
