// Package category defines the closed set of skill domains used for
// issue classification and expertise scoring. The set is fixed at
// configuration time; anything outside it is rejected at the boundary.
package category

import (
	"errors"
	"fmt"
)

// Category is a skill-domain label.
type Category string

const (
	API            Category = "API"
	Authentication Category = "Authentication"
	Database       Category = "Database"
	DevOps         Category = "DevOps"
	Documentation  Category = "Documentation"
	Performance    Category = "Performance"
	Security       Category = "Security"
	Testing        Category = "Testing"
	UI             Category = "UI"
)

// ErrUnknown is returned when a raw value is not a member of the set.
var ErrUnknown = errors.New("unknown category")

// all is kept in lexical order so iteration is deterministic.
var all = []Category{
	API,
	Authentication,
	Database,
	DevOps,
	Documentation,
	Performance,
	Security,
	Testing,
	UI,
}

// All returns every category in stable lexical order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	for _, k := range all {
		if c == k {
			return true
		}
	}
	return false
}

// String returns the wire representation of the category.
func (c Category) String() string {
	return string(c)
}

// Parse validates a raw string against the closed set.
func Parse(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrUnknown)
	}
	return c, nil
}
