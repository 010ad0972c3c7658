package synthesis

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the generation timestamp embedded in documents.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies the per-call generation id of a collection document.
type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock reads the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// UUIDGenerator returns random (v4) UUIDs.
func UUIDGenerator() IDGenerator { return uuidGenerator{} }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// SequenceIDGenerator returns Prefix-1, Prefix-2, ... It is safe for
// concurrent use.
type SequenceIDGenerator struct {
	Prefix string
	n      atomic.Int64
}

func (g *SequenceIDGenerator) NewID() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}

// FixedIDGenerator always returns the same id.
type FixedIDGenerator string

func (g FixedIDGenerator) NewID() string { return string(g) }
