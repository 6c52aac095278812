package util

import "testing"

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no quotes", "hello", "hello"},
		{"double quoted", `"hello"`, "hello"},
		{"single quotes only", "'hello'", "'hello'"},
		{"quotes in middle", `he"llo`, `he"llo`},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TrimQuotes(tt.input)
			if result != tt.expected {
				t.Errorf("TrimQuotes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFixEscapeQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no escaped quotes", "hello", "hello"},
		{"single escaped quote", `he""llo`, `he"llo`},
		{"multiple escaped quotes", `a""b""c`, `a"b"c`},
		{"consecutive escaped", `a""""b`, `a""b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FixEscapeQuotes(tt.input)
			if result != tt.expected {
				t.Errorf("FixEscapeQuotes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTrimBrackets(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no brackets", "1,2,3", "1,2,3"},
		{"bracketed", "[1,2,3]", "1,2,3"},
		{"padded", "  [1,2]  ", "1,2"},
		{"only opening", "[1,2", "[1,2"},
		{"empty brackets", "[]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TrimBrackets(tt.input)
			if result != tt.expected {
				t.Errorf("TrimBrackets(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCleanArgs(t *testing.T) {
	args := []string{`"car"`, ` "say ""hi"" now" `, "plain"}
	got := CleanArgs(args)

	want := []string{"car", `say "hi" now`, "plain"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CleanArgs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"packed", []string{"car|1,2,3,4|school"}, []string{"car", "1,2,3,4", "school"}},
		{"quoted packed", []string{`"12|true|false"`}, []string{"12", "true", "false"}},
		{"already split", []string{"car", "1,2,3"}, []string{"car", "1,2,3"}},
		{"single field", []string{"car"}, []string{"car"}},
		{"empty", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitArgs(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("SplitArgs(%v) = %v, want %v", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("SplitArgs(%v)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}
