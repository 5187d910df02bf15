package booking

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "john smith", "john smith"},
		{"trims whitespace", "  hello  ", "hello"},
		{"strips sql comment marker", "drop--table", "droptable"},
		{"strips statement separator", "a;b", "ab"},
		{"escapes quotes then strips separators", "it's \"fine\"", "it&#39s &#34fine&#34"},
		{"neutralizes script tags", "<SCRIPT>alert(1)</script>", "&ltSCRIPT&gtalert(1)&lt/script&gt"},
		{"strips js protocol", "javascript:alert(1)", "alert(1)"},
		{"strips event handler", "x onclick=bad y", "x bad y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
