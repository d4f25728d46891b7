package utils

import "errors"

const (
	NODETOL = 1.e-12
	// GEOMTOL is the tolerance used to decide that two vertex displacement
	// vectors describe the same straight-sided element family.
	GEOMTOL = 1.e-10
)

var (
	ErrUnsupported     = errors.New("unsupported element type or operation")
	ErrSingularElement = errors.New("non-positive jacobian")
	ErrBadExpression   = errors.New("malformed boundary expression")
)
