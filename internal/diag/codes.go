package diag

import "fmt"

// Code is a numeric diagnostic code in archcheck's reserved 70000 range.
type Code uint32

const (
	UnknownCode Code = 0

	ForbiddenDependency   Code = 70001
	MissingImplementation Code = 70002
	ImpureImport          Code = 70003
	CircularDependency    Code = 70004
	MirrorMismatch        Code = 70005
	OverlappingMembers    Code = 70006
	UnassignedFile        Code = 70007
	MissingLocation       Code = 70008
	ScopeMismatch         Code = 70009

	InvalidContract Code = 70099
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	ForbiddenDependency:   "Forbidden dependency",
	MissingImplementation: "Missing implementation",
	ImpureImport:          "Impure import",
	CircularDependency:    "Circular dependency",
	MirrorMismatch:        "Mirror counterpart missing",
	OverlappingMembers:    "Overlapping members",
	UnassignedFile:        "Unassigned file",
	MissingLocation:       "Declared location missing",
	ScopeMismatch:         "Scope mismatch",
	InvalidContract:       "Invalid contract",
}

// Codes returns every known code in ascending order.
func Codes() []Code {
	return []Code{
		ForbiddenDependency,
		MissingImplementation,
		ImpureImport,
		CircularDependency,
		MirrorMismatch,
		OverlappingMembers,
		UnassignedFile,
		MissingLocation,
		ScopeMismatch,
		InvalidContract,
	}
}

// ID renders the code the way compilers do, e.g. KS70001.
func (c Code) ID() string {
	return fmt.Sprintf("KS%d", uint32(c))
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
