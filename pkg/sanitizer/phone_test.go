package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "us number with formatting",
			input: "(212) 555-0147",
			want:  "+12125550147",
		},
		{
			name:  "us number already e164",
			input: "+12125550147",
			want:  "+12125550147",
		},
		{
			name:  "israeli local number",
			input: "+972528000000",
			want:  "+972528000000",
		},
		{
			name:  "surrounding whitespace",
			input: "  +12125550147  ",
			want:  "+12125550147",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "",
		},
		{
			name:  "garbage input",
			input: "not-a-phone",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	input := "(212) 555-0147"
	first := NormalizePhone(input)
	second := NormalizePhone(first)
	if first != second {
		t.Errorf("not idempotent: first %q, second %q", first, second)
	}
}
