package id

import "github.com/google/uuid"

// Generator creates row surrogate keys and dispatch ids.
type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

// NewID returns a random (version 4) UUID in canonical form.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
