//go:build tools
// +build tools

// Package tools pins the code generators run through `go generate`
// (mockgen for the mocks/ package) so go.mod and go.sum track them.
package wish_wall

import (
	_ "go.uber.org/mock/mockgen"
)
