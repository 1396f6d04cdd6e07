package money

import (
	"errors"
	"math"
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		err  error
	}{
		{"10.000", 10000, nil},
		{"Rp 12.500", 12500, nil},
		{"7500", 7500, nil},
		{" 1.250.000 ", 1250000, nil},
		{"5.000,00", 5000, nil},
		{"5.000,50", 0, ErrFractional},
		{"", 0, ErrEmptyPrice},
		{"Rp", 0, ErrEmptyPrice},
		{"abc", 0, ErrMalformed},
		{"0", 0, ErrNonPositive},
		{"-1.000", 0, ErrNonPositive},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q: expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: expected %d, got %d err=%v", tc.in, tc.want, got, err)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := map[int64]string{
		0:       "Rp 0",
		500:     "Rp 500",
		10000:   "Rp 10.000",
		23000:   "Rp 23.000",
		1250000: "Rp 1.250.000",
		-15000:  "-Rp 15.000",
	}
	for in, want := range cases {
		if got := FormatRupiah(in); got != want {
			t.Fatalf("%d: expected %q, got %q", in, want, got)
		}
	}
}

func TestMultiplyAndSumOverflow(t *testing.T) {
	cases := []struct {
		name  string
		price int64
		qty   int
		want  int64
		err   error
	}{
		{"regular", 5000, 3, 15000, nil},
		{"max quantity", 5000, 1000, 5000000, nil},
		{"wraps int64", 5000, 1 << 61, 0, ErrOverflow},
		{"huge price", math.MaxInt64, 2, 0, ErrOverflow},
		{"exact max", math.MaxInt64, 1, math.MaxInt64, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Multiply(tc.price, tc.qty)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if tc.err == nil && got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}

	if got, err := Sum(13000, 10000); err != nil || got != 23000 {
		t.Fatalf("expected 23000, got %d err=%v", got, err)
	}
	if _, err := Sum(math.MaxInt64, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}
