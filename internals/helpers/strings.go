package helper

import "strings"

// LikePattern turns user input into a pattern for LOWER(col) LIKE ?.
func LikePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}
