package model

import "fmt"

// ContractType is the closed set of contract kinds archcheck understands.
type ContractType uint8

const (
	NoDependency ContractType = iota + 1
	MustImplement
	Purity
	NoCycles
	Mirrors
	Exists
	Scope
	Overlap
	Exhaustiveness
)

var contractTypeNames = map[ContractType]string{
	NoDependency:   "noDependency",
	MustImplement:  "mustImplement",
	Purity:         "purity",
	NoCycles:       "noCycles",
	Mirrors:        "mirrors",
	Exists:         "exists",
	Scope:          "scope",
	Overlap:        "overlap",
	Exhaustiveness: "exhaustiveness",
}

// ContractTypes returns every contract type in declaration order.
func ContractTypes() []ContractType {
	return []ContractType{
		NoDependency, MustImplement, Purity, NoCycles, Mirrors,
		Exists, Scope, Overlap, Exhaustiveness,
	}
}

func (t ContractType) String() string {
	if name, ok := contractTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ContractType(%d)", uint8(t))
}

// Valid reports whether t is one of the known contract types.
func (t ContractType) Valid() bool {
	_, ok := contractTypeNames[t]
	return ok
}

// MarshalText renders the type by name so reports stay readable.
func (t ContractType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Contract is one architectural rule bound to symbols in a Tree.
// Args are ordered and refer to symbols by ID.
type Contract struct {
	Type     ContractType
	Name     string
	Args     []SymbolID
	Location string
}

// Reference returns the lightweight value embedded in diagnostics.
func (c Contract) Reference() ContractReference {
	return ContractReference{Name: c.Name, Type: c.Type, Location: c.Location}
}

// ContractReference identifies a contract without retaining its symbols.
type ContractReference struct {
	Name     string       `json:"name"`
	Type     ContractType `json:"type"`
	Location string       `json:"location,omitempty"`
}
