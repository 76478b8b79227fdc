package core

import "testing"

func TestParseWhen(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-06-01", true},
		{"2024-06-01T10:30:00Z", true},
		{"2024/06/01", true},
		{"06/01/2024", true},
		{"Jan 2, 2006", true},
		{"not-a-date", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range cases {
		_, ok := ParseWhen(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseWhen(%q) ok=%v, want %v", tc.in, ok, tc.ok)
		}
	}
}

func TestParseWhenOrdering(t *testing.T) {
	early, _ := ParseWhen("2024-01-01")
	late, _ := ParseWhen("2024-06-01")
	if !late.After(early) {
		t.Fatalf("expected 2024-06-01 after 2024-01-01")
	}
}
