package ext

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out record identifiers.
type IDGenerator interface {
	GenerateID() string
}

// NewUUIDGenerator returns random version 4 UUIDs.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

type uuidGenerator struct{}

func (uuidGenerator) GenerateID() string {
	return uuid.NewString()
}

// NewSequentialIDGenerator returns UUID-shaped identifiers counting up from 1.
// It keeps test fixtures readable.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialGenerator{}
}

type sequentialGenerator struct {
	n uint64
}

func (g *sequentialGenerator) GenerateID() string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", atomic.AddUint64(&g.n, 1))
}
