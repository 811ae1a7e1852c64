package catalog

import "strings"

// AllFilter is the catch-all sub-type filter.
const AllFilter = "ALL"

// MatchesFilter reports whether o carries the sub-type tag in its name or
// description. AllFilter matches everything.
func MatchesFilter(o Offering, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, AllFilter) {
		return true
	}
	needle := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(o.Name), needle) ||
		strings.Contains(strings.ToLower(o.Description), needle)
}

// MatchesQuery is a case-insensitive substring test against the name only.
func MatchesQuery(o Offering, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.Name), strings.ToLower(query))
}

// Filter returns the offerings that satisfy both filter and query.
func Filter(offerings []Offering, filter, query string) []Offering {
	var matched []Offering
	for _, o := range offerings {
		if MatchesFilter(o, filter) && MatchesQuery(o, query) {
			matched = append(matched, o)
		}
	}
	return matched
}
