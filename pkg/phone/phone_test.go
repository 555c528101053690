package phone

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "us national with formatting", in: "(415) 555-0134", want: "+14155550134"},
		{name: "already e164", in: "+14155550134", want: "+14155550134"},
		{name: "eleven digits with country code", in: "14155550134", want: "+14155550134"},
		{name: "international keeps prefix", in: "+44 20 7946 0958", want: "+442079460958"},
		{name: "too short", in: "12345", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "letters only", in: "call me", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal("(415) 555-0134", "+1 415 555 0134") {
		t.Fatalf("expected formatted and e164 forms to match")
	}
	if Equal("", "") {
		t.Fatalf("two unusable numbers must not match")
	}
	if Equal("+14155550134", "+14155550199") {
		t.Fatalf("distinct numbers must not match")
	}
}

func TestLastFour(t *testing.T) {
	if got := LastFour("(415) 555-0134"); got != "0134" {
		t.Fatalf("LastFour = %q, want 0134", got)
	}
	if got := LastFour("abc"); got != "" {
		t.Fatalf("expected empty for unusable input, got %q", got)
	}
}
