package utils

import (
	"fmt"
	"strings"
)

// ElementType represents the reference shapes handled by the transform engine

type ElementType int

const (
	Unknown ElementType = iota
	// 1D elements, used for edges and 2D element boundaries
	Line
	// 2D elements
	Triangle
	Quad
	// 3D elements
	Tet
	Pyramid
	Prism
	Hex
)

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Line",
		"Triangle", "Quad",
		"Tet", "Pyramid", "Prism", "Hex",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	case Tet, Hex, Prism, Pyramid:
		return 3
	default:
		return -1
	}
}

// GetNumVertices returns the number of corner vertices for each element type
func (e ElementType) GetNumVertices() int {
	switch e {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad:
		return 4
	case Tet:
		return 4
	case Pyramid:
		return 5
	case Prism:
		return 6
	case Hex:
		return 8
	default:
		return 0
	}
}

// GetNumEdges returns the number of edges
func (e ElementType) GetNumEdges() int {
	switch e {
	case Line:
		return 1
	case Triangle:
		return 3
	case Quad:
		return 4
	case Tet:
		return 6
	case Pyramid:
		return 8
	case Prism:
		return 9
	case Hex:
		return 12
	default:
		return 0
	}
}

// GetNumFaces returns the number of faces for 3D elements
func (e ElementType) GetNumFaces() int {
	switch e {
	case Tet:
		return 4
	case Hex:
		return 6
	case Prism, Pyramid:
		return 5
	default:
		return 0
	}
}

// GetNumBoundaries returns the number of boundary entities: edges in 2D, faces in 3D
func (e ElementType) GetNumBoundaries() int {
	if e.GetDimension() == 2 {
		return e.GetNumEdges()
	}
	return e.GetNumFaces()
}

// IsTensor reports whether the shape is a tensor product of 1D expansions
func (e ElementType) IsTensor() bool {
	switch e {
	case Line, Quad, Hex:
		return true
	}
	return false
}

func ParseElementType(name string) (e ElementType, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "line", "segment":
		e = Line
	case "tri", "triangle":
		e = Triangle
	case "quad", "quadrilateral":
		e = Quad
	case "tet", "tetrahedron":
		e = Tet
	case "pyr", "pyramid":
		e = Pyramid
	case "prism", "wedge":
		e = Prism
	case "hex", "hexahedron":
		e = Hex
	default:
		err = fmt.Errorf("unknown element type: %q", name)
	}
	return
}
