package keyvalues

import "strings"

// Platform conditions that hold on desktop builds.
var desktopConditions = map[string]bool{
	"$win32":   true,
	"$windows": true,
	"$win64":   true,
	"$osx":     true,
	"$linux":   true,
	"$posix":   true,
}

// evalCondition evaluates a bracketed platform condition such as
// "[!$X360]" or "[$WIN32||$OSX]".
func evalCondition(text string) bool {
	expr := strings.ToLower(strings.TrimSpace(strings.Trim(text, "[]")))
	for _, alt := range strings.Split(expr, "||") {
		all := true
		for _, term := range strings.Split(alt, "&&") {
			term = strings.TrimSpace(term)
			negate := strings.HasPrefix(term, "!")
			term = strings.TrimPrefix(term, "!")
			if desktopConditions[term] == negate {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
