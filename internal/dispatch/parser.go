package dispatch

import (
	"regexp"
	"strings"
)

var (
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,25}$`)
	portalPattern = regexp.MustCompile(`^[A-E]$`)
)

// ParseCommand splits a chat line into its command verb and arguments.
// The verb is lowercased and keeps its leading "!". Returns ok=false for
// lines that are not commands.
func ParseCommand(text string) (verb string, args []string, ok bool) {
	if !strings.HasPrefix(text, "!") {
		return "", nil, false
	}
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}
	return strings.ToLower(parts[0]), parts[1:], true
}

// StripMention removes a leading @ from a handle argument
func StripMention(arg string) string {
	return strings.TrimPrefix(arg, "@")
}

// ValidHandle reports whether a handle matches the allowed username shape
func ValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

// ValidPortalLetter reports whether a fight argument names a dungeon portal
func ValidPortalLetter(letter string) bool {
	return portalPattern.MatchString(letter)
}
