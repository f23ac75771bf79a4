package tabula

import (
	"crypto/rand"
	"io"
	mathrand "math/rand"

	"github.com/google/uuid"
)

// ID is the identity token of a note, beat, bar, effect or tuplet group. It
// stays the same across mutations of the entity and is what the layout engine
// keys its elements by.
type ID string

// IDSource generates identity tokens for one document. There is no package
// level generator: construction, deserialization and paste all take the
// source explicitly, so tests can inject a seeded one.
type IDSource struct {
	r io.Reader
}

// NewIDSource returns a source drawing randomness from r; a nil r uses
// crypto/rand.
func NewIDSource(r io.Reader) *IDSource {
	if r == nil {
		r = rand.Reader
	}
	return &IDSource{r: r}
}

// NewSeededIDSource returns a deterministic source, producing the same
// sequence of ids for the same seed.
func NewSeededIDSource(seed int64) *IDSource {
	return &IDSource{r: mathrand.New(mathrand.NewSource(seed))}
}

// New returns a fresh identity token.
func (s *IDSource) New() ID {
	u, err := uuid.NewRandomFromReader(s.r)
	if err != nil {
		// the readers used here never fail; a failure means the source is broken
		panic("tabula: id source: " + err.Error())
	}
	return ID(u.String())
}
