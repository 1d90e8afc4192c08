// Package browse derives the visible movie list from an in-memory set:
// dedupe by id, filter, sort, paginate.  Every function is pure and returns
// a new slice; inputs are never modified.
//
// Missing fields exclude a movie from an active filter on that field: a
// movie without genre ids never matches a genre filter, one without a
// release date never matches a year filter, one without a language never
// matches a language filter.  Movies without a title are dropped.
package browse

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iliyamo/movies-api/internal/model"
	"github.com/iliyamo/movies-api/internal/paging"
)

// Filter holds the optional predicates.  Zero values disable a predicate.
type Filter struct {
	Title     string  // case-insensitive substring of the title
	GenreID   int     // member of genre_ids
	MinRating float64 // vote_average >= MinRating
	Year      string  // prefix of release_date
	Language  string  // exact original_language
}

// SortKey names a sortable field.
type SortKey string

const (
	SortNone        SortKey = ""
	SortTitle       SortKey = "title"
	SortReleaseDate SortKey = "release_date"
	SortRating      SortKey = "vote_average"
)

// ParseSortKey validates a sort field name; "" means input order.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortNone, SortTitle, SortReleaseDate, SortRating:
		return k, true
	}
	return SortNone, false
}

// Sort selects the order of the derived list.
type Sort struct {
	Key  SortKey
	Desc bool
}

// Dedupe keeps the first occurrence of every movie id.
func Dedupe(movies []model.Movie) []model.Movie {
	seen := make(map[int64]struct{}, len(movies))
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Match reports whether m passes every active predicate of f.
func (f Filter) Match(m model.Movie) bool {
	if strings.TrimSpace(m.Title) == "" {
		return false
	}
	if t := strings.TrimSpace(f.Title); t != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(t)) {
		return false
	}
	if f.GenreID != 0 && !slices.Contains(m.GenreIDs, f.GenreID) {
		return false
	}
	if f.MinRating > 0 && m.VoteAverage < f.MinRating {
		return false
	}
	if f.Year != "" && (m.ReleaseDate == "" || !strings.HasPrefix(m.ReleaseDate, f.Year)) {
		return false
	}
	if f.Language != "" && (m.OriginalLanguage == "" || m.OriginalLanguage != f.Language) {
		return false
	}
	return true
}

// Apply dedupes movies, keeps those matching f and orders them by s.  The
// sort is stable, so ties (and SortNone) keep input order.
func Apply(movies []model.Movie, f Filter, s Sort) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range Dedupe(movies) {
		if f.Match(m) {
			out = append(out, m)
		}
	}

	var less func(a, b model.Movie) int
	switch s.Key {
	case SortTitle:
		col := collate.New(language.English, collate.Loose)
		less = func(a, b model.Movie) int { return col.CompareString(a.Title, b.Title) }
	case SortReleaseDate:
		less = func(a, b model.Movie) int { return releaseDate(a).Compare(releaseDate(b)) }
	case SortRating:
		less = func(a, b model.Movie) int { return cmp.Compare(a.VoteAverage, b.VoteAverage) }
	default:
		return out
	}
	if s.Desc {
		asc := less
		less = func(a, b model.Movie) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, less)
	return out
}

// releaseDate parses the YYYY-MM-DD release date.  Missing or malformed
// dates sort as the earliest date.
func releaseDate(m model.Movie) time.Time {
	t, err := time.Parse(time.DateOnly, m.ReleaseDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Page cuts one page out of a derived list.
func Page(movies []model.Movie, page, size int) (paging.Page[model.Movie], error) {
	if page < 1 || size < 1 {
		return paging.Page[model.Movie]{}, paging.ErrInvalid
	}
	return paging.Window(movies, paging.Request{Page: page, Limit: size}), nil
}
