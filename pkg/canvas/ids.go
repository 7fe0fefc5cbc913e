package canvas

import (
	"strings"

	"github.com/ThreeDotsLabs/watermill"
)

// TokenSource produces the unique part of generated node ids.
type TokenSource interface {
	Token() string
}

// ULIDTokens draws lexicographically sortable ULID tokens.
type ULIDTokens struct{}

func (ULIDTokens) Token() string {
	return strings.ToLower(watermill.NewULID())
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string {
	return f()
}
