package enums

import "fmt"

// EntityKind discriminates the target of a polymorphic tag reference.
type EntityKind string

const (
	EntityKindProduct    EntityKind = "product"
	EntityKindCollection EntityKind = "collection"
	EntityKindReview     EntityKind = "review"
)

var validEntityKinds = []EntityKind{
	EntityKindProduct,
	EntityKindCollection,
	EntityKindReview,
}

// String implements fmt.Stringer.
func (e EntityKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EntityKind.
func (e EntityKind) IsValid() bool {
	for _, candidate := range validEntityKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntityKind converts raw input into an EntityKind.
func ParseEntityKind(value string) (EntityKind, error) {
	for _, candidate := range validEntityKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity kind %q", value)
}
