// Package transport contains the default installer.Fetcher implementations.
package transport

import (
	"fmt"

	"github.com/ImSingee/uvm/internal/unity"
)

// TransportError wraps any failure of a fetch or unpack step.
type TransportError struct {
	Op        string
	Component unity.Component
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Component, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
