package render

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownClusterType is returned for cluster types without templates.
	ErrUnknownClusterType = errors.New("unknown cluster type")
	// ErrUnknownIngressType is returned for ingress types other than none, public and tailnet.
	ErrUnknownIngressType = errors.New("unknown ingress type")
	// ErrTemplateNotFound is returned when a template is missing from the set.
	ErrTemplateNotFound = errors.New("template not found")
)

// Error is a rendering failure. Template is empty when the failure happened
// while selecting templates.
type Error struct {
	Template string
	Err      error
}

func (e *Error) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("render: %v", e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
