package board

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces identifiers that are never reused within a process.
type IDGenerator interface {
	NewID() string
}

// ULIDGenerator yields lexicographically sortable ids. ulid.Make is monotonic
// within a millisecond, so rapid successive calls never collide.
type ULIDGenerator struct{}

func (ULIDGenerator) NewID() string {
	return ulid.Make().String()
}

// UUIDGenerator yields random version 4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator registered under name ("ulid" or "uuid").
func NewIDGenerator(name string) (IDGenerator, error) {
	switch name {
	case "", "ulid":
		return ULIDGenerator{}, nil
	case "uuid":
		return UUIDGenerator{}, nil
	}
	return nil, fmt.Errorf("unknown id generator %q", name)
}
