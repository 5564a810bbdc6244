package core

import "testing"

func TestDecimalToCents(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
		ok  bool
	}{
		{1, 100, true},
		{1.23, 123, true},
		{0.01, 1, true},
		{45.50, 4550, true},
		{1.005, 101, true}, // half-up rounding
		{2000, 200000, true},
		{0, 0, false},
		{-1, 0, false},
	}
	for _, tc := range cases {
		got, err := DecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%v expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%v expected error", tc.in)
			}
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	m := Money{Cents: 4550}
	if got := m.Decimal(); got != 45.5 {
		t.Fatalf("expected 45.5, got %v", got)
	}
}
