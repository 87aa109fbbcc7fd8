package diag

import "sort"

// Bag collects diagnostics up to an optional limit.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag returns a bag holding at most max diagnostics; max <= 0 means no limit.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d unless the limit is reached. It reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Len returns the number of diagnostics held.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the held diagnostics. Callers must not modify the slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by file, line, column, then code. Structural
// diagnostics sort after file-scoped ones, by scope label.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		fi, iok := b.items[i].Source.(FileRef)
		fj, jok := b.items[j].Source.(FileRef)
		if iok != jok {
			return iok
		}
		if iok {
			if fi.File != fj.File {
				return fi.File < fj.File
			}
			if fi.Line != fj.Line {
				return fi.Line < fj.Line
			}
			if fi.Column != fj.Column {
				return fi.Column < fj.Column
			}
		} else {
			si, sj := sourceString(b.items[i].Source), sourceString(b.items[j].Source)
			if si != sj {
				return si < sj
			}
		}
		return b.items[i].Code < b.items[j].Code
	})
}

type dedupKey struct {
	code   Code
	source string
	msg    string
}

// Dedup drops diagnostics with the same code, source and message as an
// earlier one, keeping the first occurrence.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	kept := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := dedupKey{code: d.Code, source: sourceString(d.Source), msg: d.Message}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, d)
	}
	b.items = kept
}

func sourceString(src SourceRef) string {
	if src == nil {
		return ""
	}
	return src.String()
}
