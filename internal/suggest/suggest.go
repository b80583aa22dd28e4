// Package suggest proposes corrections for mistyped commands and flags.
package suggest

import (
	"sort"
	"strings"
)

// FlagAliases maps words people reach for to the flag overlay actually uses.
var FlagAliases = map[string]string{
	"url":      "--template-url",
	"src":      "--template-url",
	"tpl":      "--template",
	"markup":   "--template",
	"ctrl":     "--controller",
	"name":     "--controller",
	"alias":    "--as",
	"dep":      "--local",
	"inject":   "--local",
	"var":      "--input",
	"param":    "--input",
	"wait":     "--delay",
	"timeout":  "--delay",
	"output":   "--json",
	"verbose":  "--log-level debug",
	"loglevel": "--log-level",
}

type match struct {
	name string
	dist int
}

// Names returns up to three candidates close to unknown, nearest first.
// Candidates further than max(3, len/2) edits away are dropped.
func Names(unknown string, candidates []string) []string {
	return rank(strings.ToLower(unknown), candidates, strings.ToLower)
}

// Flag is Names for flags: leading dashes are ignored when comparing and
// kept in the results.
func Flag(unknown string, validFlags []string) []string {
	return rank(normalize(unknown), validFlags, normalize)
}

// GetFlagHint returns the alias hint for flag, or "".
func GetFlagHint(flag string) string {
	return FlagAliases[normalize(flag)]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimLeft(s, "-"))
}

func rank(target string, candidates []string, norm func(string) string) []string {
	var matches []match
	for _, c := range candidates {
		n := norm(c)
		maxDist := max(3, len(n)/2)
		if d := levenshtein(target, n); d <= maxDist {
			matches = append(matches, match{name: c, dist: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return len(matches[i].name) < len(matches[j].name)
	})

	out := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
