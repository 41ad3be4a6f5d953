// Package identifier provides the 128-bit stable identity used for
// vertices, edges, and tasks. It wraps google/uuid so identifiers
// round-trip through their canonical 36-character hyphenated hex
// string form.
package identifier

import (
	"github.com/google/uuid"

	schedulererrors "github.com/dagscheduler/dagscheduler/pkg/errors"
)

// Identifier is a 128-bit value with a canonical string form.
type Identifier struct {
	id uuid.UUID
}

// New generates a random identifier.
func New() Identifier {
	return Identifier{id: uuid.New()}
}

// Parse validates and wraps a canonical identifier string. Malformed
// strings fail with an IdentifierError.
func Parse(s string) (Identifier, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Identifier{}, schedulererrors.NewIdentifierError(s, err)
	}
	return Identifier{id: id}, nil
}

// MustParse is Parse but panics on malformed input. Intended for
// literals known to be valid at compile time (tests, constants).
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String renders the canonical 36-character hyphenated hex form.
func (i Identifier) String() string {
	return i.id.String()
}

// Equal reports whether two identifiers compare equal via their string
// forms.
func (i Identifier) Equal(other Identifier) bool {
	return i.id == other.id
}

// IsZero reports whether this identifier is the zero value (never
// produced by New, and produced by Parse only for the all-zero UUID).
func (i Identifier) IsZero() bool {
	return i.id == uuid.Nil
}
