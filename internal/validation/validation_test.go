package validation

import (
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"plain text", "hello class", true},
		{"empty", "", false},
		{"whitespace only", "  \n\t ", false},
		{"needs trimming", "  hello  ", true},
		{"at limit", strings.Repeat("a", 4000), true},
		{"over limit", strings.Repeat("a", 4001), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateContent(tt.content); got != tt.want {
				t.Errorf("ValidateContent(%q...) = %v, want %v", truncate(tt.content), got, tt.want)
			}
		})
	}
}

func TestMaxMessageLengthFromEnv(t *testing.T) {
	t.Setenv("MAX_MESSAGE_LENGTH", "10")
	if got := MaxMessageLength(); got != 10 {
		t.Errorf("MaxMessageLength() = %d, want 10", got)
	}
	if ValidateContent(strings.Repeat("a", 11)) {
		t.Error("content over the configured limit accepted")
	}

	t.Setenv("MAX_MESSAGE_LENGTH", "not-a-number")
	if got := MaxMessageLength(); got != 4000 {
		t.Errorf("invalid env must fall back to default, got %d", got)
	}
}

func TestValidateGroupName(t *testing.T) {
	tests := []struct {
		name      string
		groupName string
		want      bool
	}{
		{"plain", "Math 5B", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"at limit", strings.Repeat("a", 100), true},
		{"over limit", strings.Repeat("a", 101), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateGroupName(tt.groupName); got != tt.want {
				t.Errorf("ValidateGroupName(%q...) = %v, want %v", truncate(tt.groupName), got, tt.want)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-5, 20},
		{50, 50},
		{100, 100},
		{500, 100},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.limit); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestDefaultPageSizeFromEnv(t *testing.T) {
	t.Setenv("MESSAGE_PAGE_SIZE", "35")
	if got := DefaultPageSize(); got != 35 {
		t.Errorf("DefaultPageSize() = %d, want 35", got)
	}

	t.Setenv("MESSAGE_PAGE_SIZE", "500")
	if got := DefaultPageSize(); got != 20 {
		t.Errorf("out-of-range env must fall back to default, got %d", got)
	}
}

func truncate(s string) string {
	if len(s) > 20 {
		return s[:20]
	}
	return s
}
