package nlu

import "testing"

func TestValidateDate(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"11/02", true},
		{"01/31", true},
		{"02/29", true}, // leap-year aware
		{"02/30", false},
		{"13/01", false},
		{"00/10", false},
		{"04/31", false},
		{"1102", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidateDate(tc.value); got != tc.want {
			t.Errorf("ValidateDate(%q): want %v, got %v", tc.value, tc.want, got)
		}
	}
}

func TestValidateTime(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"00:00", true},
		{"23:59", true},
		{"19:30", true},
		{"24:00", false},
		{"12:60", false},
		{"noon", false},
	}
	for _, tc := range cases {
		if got := ValidateTime(tc.value); got != tc.want {
			t.Errorf("ValidateTime(%q): want %v, got %v", tc.value, tc.want, got)
		}
	}
}

func TestValidatePersonCount(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"3", true},
		{"3人", true},
		{"2名", true},
		{"0", false},
		{"-1", false},
		{"abc", false},
	}
	for _, tc := range cases {
		if got := ValidatePersonCount(tc.value); got != tc.want {
			t.Errorf("ValidatePersonCount(%q): want %v, got %v", tc.value, tc.want, got)
		}
	}
}
