// SPDX-License-Identifier: BSD-3-Clause

package powerboard

import "testing"

func TestFrame(t *testing.T) {
	if got, want := frame(cmdMetadata), "V:\n"; got != want {
		t.Fatalf("frame(V:) = %q, want %q", got, want)
	}
	if got, want := frame(cmdSetFan, 60, 90, 30), "F:60,90,30\n"; got != want {
		t.Fatalf("frame(F:,60,90,30) = %q, want %q", got, want)
	}
}

func TestReorderRows(t *testing.T) {
	a1, a2, a3 := reorderRows(30, 60, 90)
	if a1 != 60 || a2 != 90 || a3 != 30 {
		t.Fatalf("reorderRows(30,60,90) = (%d,%d,%d), want (60,90,30)", a1, a2, a3)
	}
}

// TestSetFanCommandReorder is S4: set_fan_speed(30,60,90) on fw 2.1 must
// produce the exact wire bytes F:60,90,30.
func TestSetFanCommandReorder(t *testing.T) {
	a1, a2, a3 := reorderRows(30, 60, 90)
	got := frame(cmdSetFan, a1, a2, a3)
	if want := "F:60,90,30\n"; got != want {
		t.Fatalf("set_fan_speed frame = %q, want %q", got, want)
	}
}

// TestUpdateFanCommandFw22Inversion is S5: update_fan_speed(30,60,90) on fw
// 2.2 must produce the exact wire bytes U:40,10,70 -- reorder to
// (60,90,30), then invert each channel as 100-v.
func TestUpdateFanCommandFw22Inversion(t *testing.T) {
	a1, a2, a3 := reorderRows(30, 60, 90)
	a1, a2, a3 = 100-a1, 100-a2, 100-a3
	got := frame(cmdUpdateFan, a1, a2, a3)
	if want := "U:40,10,70\n"; got != want {
		t.Fatalf("update_fan_speed frame = %q, want %q", got, want)
	}
}

func TestPWMByteToPercentRoundTrip(t *testing.T) {
	for _, pct := range []int{0, 1, 25, 50, 75, 99, 100} {
		b := pwmPercentToByte(pct)
		if b < 0 || b > pwmMaxByte {
			t.Fatalf("pwmPercentToByte(%d) = %d out of byte range", pct, b)
		}
		got := pwmByteToPercent(b)
		if diff := got - pct; diff < -1 || diff > 1 {
			t.Fatalf("round trip pwm %d -> byte %d -> %d, drifted beyond quantization", pct, b, got)
		}
	}
}

func TestPWMByteToPercentFw23Inversion(t *testing.T) {
	raw := 200
	inverted := pwmMaxByte - raw
	if inverted != 55 {
		t.Fatalf("sanity: 255-%d = %d, want 55", raw, inverted)
	}
	got := pwmByteToPercent(inverted)
	want := pwmByteToPercent(55)
	if got != want {
		t.Fatalf("pwmByteToPercent(inverted) = %d, want %d", got, want)
	}
}

func TestClampPercent(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 50: 50, 100: 100, 150: 100}
	for in, want := range cases {
		if got := clampPercent(in); got != want {
			t.Fatalf("clampPercent(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestParseIntFields(t *testing.T) {
	got, err := parseIntFields("1,2,3", 3)
	if err != nil {
		t.Fatalf("parseIntFields: %v", err)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("parseIntFields = %v, want %v", got, want)
		}
	}
}

func TestParseIntFieldsWrongCount(t *testing.T) {
	if _, err := parseIntFields("1,2", 3); err == nil {
		t.Fatal("expected error for wrong field count")
	}
}

func TestParseFloatFields(t *testing.T) {
	got, err := parseFloatFields("1.5,2.25,3,4.0", 4)
	if err != nil {
		t.Fatalf("parseFloatFields: %v", err)
	}
	want := []float64{1.5, 2.25, 3, 4.0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("parseFloatFields = %v, want %v", got, want)
		}
	}
}
