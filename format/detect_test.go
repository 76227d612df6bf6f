package format

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Unknown, "Unknown"},
		{RTF, "RTF"},
		{EncapsulatedHTML, "EncapsulatedHTML"},
		{EncapsulatedText, "EncapsulatedText"},
		{Kind(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Kind
	}{
		{"plain rtf", `{\rtf1\ansi Hello}`, RTF},
		{"html encapsulation", `{\rtf1\ansi\fromhtml1 body}`, EncapsulatedHTML},
		{"text encapsulation", `{\rtf1\ansi\fromtext body}`, EncapsulatedText},
		{"marker past the probe window", `{\rtf1\a\b\c\d\e\f\g\h\i\j\fromhtml1}`, RTF},
		{"not rtf", "<html></html>", Unknown},
		{"empty", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect([]byte(tt.data)); got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}
