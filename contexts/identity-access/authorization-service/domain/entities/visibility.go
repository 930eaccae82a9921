package entities

import "strings"

// Visibility is the exposure tier of a resource, totally ordered by
// increasing exposure: Private < Internal < Public.
type Visibility int

const (
	VisibilityPrivate  Visibility = 1
	VisibilityInternal Visibility = 2
	VisibilityPublic   Visibility = 3
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityInternal, VisibilityPublic:
		return true
	default:
		return false
	}
}

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityInternal:
		return "internal"
	case VisibilityPublic:
		return "public"
	default:
		return "unknown"
	}
}

// ParseVisibility maps the wire spelling to a tier. The second return is
// false for unknown spellings.
func ParseVisibility(raw string) (Visibility, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "private":
		return VisibilityPrivate, true
	case "internal":
		return VisibilityInternal, true
	case "public":
		return VisibilityPublic, true
	default:
		return 0, false
	}
}
