package entity

import "errors"

var (
	// ErrUnknownColumn is returned when values name a column the table does not declare.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInvalidValue is returned when a value cannot be stored in its column's kind.
	ErrInvalidValue = errors.New("invalid column value")
	// ErrMissingKey is returned when a lookup lacks one of the table's identity columns.
	ErrMissingKey = errors.New("missing identity key")
	// ErrUniqueViolation marks a lost insert race on an identity key.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrUnexpectedShape marks an upstream payload that is not the expected object or list.
	ErrUnexpectedShape = errors.New("unexpected payload shape")
)
