// Package ident generates report identifiers for self-hosted store
// backends. Identifiers are lowercase hex so they survive the gist-URL
// pattern match on the intake side.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh 32-character hex identifier.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
