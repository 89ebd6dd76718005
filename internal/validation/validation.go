package validation

import (
	"os"
	"strconv"
	"strings"
)

func NormalizeContent(content string) string {
	return strings.TrimSpace(content)
}

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

// ValidateContent checks a message body after trimming.
func ValidateContent(content string) bool {
	content = NormalizeContent(content)
	return content != "" && len(content) <= MaxMessageLength()
}

func NormalizeGroupName(name string) string {
	return strings.TrimSpace(name)
}

func ValidateGroupName(name string) bool {
	name = NormalizeGroupName(name)
	return name != "" && len(name) <= 100
}

func DefaultPageSize() int {
	sizeStr := os.Getenv("MESSAGE_PAGE_SIZE")
	if sizeStr == "" {
		return 20
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		return 20
	}
	return size
}

// ClampLimit bounds a client-supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize()
	}
	if limit > 100 {
		return 100
	}
	return limit
}
