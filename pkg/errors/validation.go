package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxGraphNameLength bounds stored graph names.
const maxGraphNameLength = 128

// ValidateGraphName validates the name a graph is stored under. Names become
// part of storage keys and file names, so the rules are conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateGraphName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGraphName, "graph name cannot be empty")
	}

	if len(name) > maxGraphNameLength {
		return New(ErrCodeInvalidGraphName, "graph name too long (max %d characters)", maxGraphNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraphName, "graph name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidGraphName, "graph name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePresetName validates a preset name from a catalog.
func ValidatePresetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidCatalog, "preset name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCatalog, "preset name %q contains control characters", name)
		}
	}
	return nil
}

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a preset display color. Empty means "use default".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidCatalog, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}
