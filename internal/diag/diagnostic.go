package diag

import "github.com/phobologic/archcheck/internal/model"

// Diagnostic is one reported violation. Values are never mutated after
// construction; helpers return copies.
type Diagnostic struct {
	Message  string
	Code     Code
	Source   SourceRef
	Contract *model.ContractReference
}

// New returns a diagnostic with no related contract.
func New(code Code, src SourceRef, msg string) Diagnostic {
	return Diagnostic{Message: msg, Code: code, Source: src}
}

// WithContract returns a copy of d referencing c.
func (d Diagnostic) WithContract(c model.Contract) Diagnostic {
	ref := c.Reference()
	d.Contract = &ref
	return d
}

// File returns the file position for file-scoped diagnostics.
func (d Diagnostic) File() (FileRef, bool) {
	ref, ok := d.Source.(FileRef)
	return ref, ok
}
