package dat

import (
	"html"
	"slices"
	"strconv"
	"strings"

	"romhub/pkg/models"
)

// Name is a release title split into its base title and the tags mined from
// the parenthesized annotation groups that follow it.
type Name struct {
	Title string
	// Groups holds the trimmed tokens of every annotation group in order.
	Groups   [][]string
	Regions  []models.Region
	Revision int
	Type     models.ReleaseType
	// Misc is the last token no other rule claimed; earlier ones are dropped.
	Misc string
}

// DecomposeName splits a game's declared name, e.g.
// "Star Fox 2 (Japan) (Beta) (1994-05-13)", into title and tags.
func DecomposeName(raw string) Name {
	head, tail := raw, ""
	if i := strings.IndexByte(raw, '('); i >= 0 {
		head, tail = raw[:i], raw[i:]
	}

	n := Name{
		Title: strings.TrimSpace(html.UnescapeString(head)),
		Type:  models.ReleaseTypeOfficial,
	}
	for _, group := range annotationGroups(tail) {
		var tokens []string
		for _, tok := range strings.Split(group, ",") {
			tok = strings.TrimSpace(html.UnescapeString(tok))
			if tok == "" {
				continue
			}
			tokens = append(tokens, tok)
			n = n.classify(tok)
		}
		n.Groups = append(slices.Clip(n.Groups), tokens)
	}
	return n
}

// annotationGroups returns the contents of each "(...)" in s. Text between
// groups is skipped; an unterminated trailing group is ignored.
func annotationGroups(s string) []string {
	var groups []string
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return groups
		}
		s = s[open+1:]
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return groups
		}
		groups = append(groups, s[:end])
		s = s[end+1:]
	}
}

// classify applies the first matching rule for tok and returns the updated
// copy; n itself is never mutated.
func (n Name) classify(tok string) Name {
	if r, ok := models.ParseRegion(tok); ok {
		n.Regions = append(slices.Clip(n.Regions), r)
		return n
	}
	if t, ok := models.ParseReleaseType(tok); ok {
		n.Type = t
		return n
	}
	if strings.Contains(tok, "Beta") {
		n.Type = models.ReleaseTypeBeta
		n.Revision = betaRevision(tok)
		return n
	}
	if _, after, ok := strings.Cut(tok, "Rev "); ok {
		n.Revision = atoiOrZero(after)
		return n
	}
	n.Misc = tok
	return n
}

// betaRevision maps "Beta 1" to 0, "Beta 2" to 1 and anything unnumbered to 0.
func betaRevision(tok string) int {
	num, err := strconv.Atoi(strings.TrimSpace(strings.Replace(tok, "Beta", "", 1)))
	if err != nil {
		return 0
	}
	return num - 1
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
