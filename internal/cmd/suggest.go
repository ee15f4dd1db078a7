package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// suggestCommand finds the closest command name to the unknown input.
// Returns empty string if nothing matches.
func suggestCommand(unknown string, commands []string) string {
	return bestMatch(strings.ToLower(unknown), commands)
}

// suggestFlag finds the closest flag name to the unknown input. Dashes are
// stripped for matching, but the match keeps its original prefix.
func suggestFlag(unknown string, flagNames []string) string {
	stripped := strings.ToLower(strings.TrimLeft(unknown, "-"))
	if stripped == "" {
		return ""
	}

	candidates := make([]string, len(flagNames))
	for i, f := range flagNames {
		candidates[i] = strings.TrimLeft(f, "-")
	}
	if match := bestMatch(stripped, candidates); match != "" {
		for i, c := range candidates {
			if c == match {
				return flagNames[i]
			}
		}
	}
	return ""
}

func bestMatch(pattern string, candidates []string) string {
	if pattern == "" || len(candidates) == 0 {
		return ""
	}
	matches := fuzzy.Find(pattern, candidates)
	if len(matches) == 0 {
		return ""
	}
	// Matches are ranked by score; the first is the closest.
	return candidates[matches[0].Index]
}
