package model

import "github.com/google/uuid"

// IDGenerator mints identifiers for new records
type IDGenerator func() string

// NewUUID is the default IDGenerator
func NewUUID() string {
	return uuid.New().String()
}
