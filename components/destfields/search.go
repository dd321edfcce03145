package destfields

import (
	"sort"
	"strings"

	"github.com/goliatone/go-destform/pkg/destination"
)

// Rank filters options by query and orders them favourites first, then
// label prefix matches, then by label. The result holds at most limit
// entries.
func Rank(options []destination.FieldOption, query string, limit int, opts Options) []destination.FieldOption {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" && opts.EmptySearchMode == EmptySearchNone {
		return nil
	}

	matches := make([]rankedOption, 0, len(options))
	for _, option := range options {
		label := strings.ToLower(option.Label)
		value := strings.ToLower(option.Value)
		if q != "" && !strings.Contains(label, q) && !strings.Contains(value, q) {
			continue
		}
		matches = append(matches, rankedOption{
			option:   option,
			isPrefix: q != "" && strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.option.IsFavorite != b.option.IsFavorite {
			return a.option.IsFavorite
		}
		if a.isPrefix != b.isPrefix {
			return a.isPrefix
		}
		return a.option.Label < b.option.Label
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]destination.FieldOption, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.option)
	}
	return out
}

type rankedOption struct {
	option   destination.FieldOption
	isPrefix bool
}
