package utils

import (
	"fmt"
	"strings"
)

// BCType is the boundary condition tag. Upper case letters carry a constant
// prescribed value, lower case letters carry a function of (x, y, z, t).
type BCType byte

const (
	// BCNone indicates no boundary condition (interior face)
	BCNone BCType = 0

	// Essential (Dirichlet) conditions
	BCValue     BCType = 'V'
	BCValueFunc BCType = 'v'
	BCWall      BCType = 'W' // zero value

	// Natural (flux) conditions
	BCFlux     BCType = 'F'
	BCFluxFunc BCType = 'f'
	BCOutflow  BCType = 'O' // zero flux

	// Mixed conditions: du/dn + Alpha*u = g
	BCRobin     BCType = 'R'
	BCRobinFunc BCType = 'r'
)

// String returns the string representation of a BCType
func (bc BCType) String() string {
	names := map[BCType]string{
		BCNone:      "None",
		BCValue:     "Value",
		BCValueFunc: "ValueFunction",
		BCWall:      "Wall",
		BCFlux:      "Flux",
		BCFluxFunc:  "FluxFunction",
		BCOutflow:   "Outflow",
		BCRobin:     "Robin",
		BCRobinFunc: "RobinFunction",
	}
	if name, ok := names[bc]; ok {
		return name
	}
	return "Unknown"
}

// IsFunction reports whether the prescribed data comes from an expression
func (bc BCType) IsFunction() bool { return bc >= 'a' && bc <= 'z' }

// IsEssential reports whether the condition prescribes the boundary value
func (bc BCType) IsEssential() bool {
	return bc == BCValue || bc == BCValueFunc || bc == BCWall
}

// IsFlux reports whether the condition contributes a weak surface integral
func (bc BCType) IsFlux() bool {
	return bc == BCFlux || bc == BCFluxFunc || bc == BCOutflow || bc.IsRobin()
}

func (bc BCType) IsRobin() bool { return bc == BCRobin || bc == BCRobinFunc }

// Constant returns the constant-valued tag matching a function tag
func (bc BCType) Constant() BCType {
	if bc.IsFunction() {
		return bc - 'a' + 'A'
	}
	return bc
}

// BCNameMap provides a mapping from common boundary condition names to BCType
// Keys are lowercase for case-insensitive matching
var BCNameMap = map[string]BCType{
	"dirichlet": BCValue,
	"value":     BCValue,
	"wall":      BCWall,
	"no_slip":   BCWall,
	"neumann":   BCFlux,
	"flux":      BCFlux,
	"outflow":   BCOutflow,
	"outlet":    BCOutflow,
	"robin":     BCRobin,
	"mixed":     BCRobin,
}

// ParseBCName converts a boundary condition name or single letter tag to BCType.
// Single letters are case sensitive, names are not.
func ParseBCName(name string) (bc BCType, err error) {
	name = strings.TrimSpace(name)
	if len(name) == 1 {
		bc = BCType(name[0])
		if bc.String() == "Unknown" {
			err = fmt.Errorf("unknown boundary condition tag: %q", name)
		}
		return
	}
	var ok bool
	if bc, ok = BCNameMap[strings.ToLower(name)]; !ok {
		err = fmt.Errorf("unknown boundary condition name: %q", name)
	}
	return
}
