// Package cart holds the cart state machine and the stock rules that gate it.
//
// All mutations are expressed as a Command and applied by Apply, a pure
// transition over the ordered line collection. Store serializes dispatch and
// persists the result; Reconciler derives stock figures without mutating.
package cart

import (
	"storefront/internal/domain"
)

type Command interface{ kind() string }

// AddLine merges into the line with the same (product, size) or appends a new one.
// An empty Size resolves to the product's default size.
type AddLine struct {
	Product  domain.Product
	Quantity int
	Size     string
}

type RemoveLine struct {
	ProductID int
	Size      string
}

// UpdateQuantity overwrites a line's quantity; a quantity <= 0 removes the line.
type UpdateQuantity struct {
	ProductID int
	Quantity  int
	Size      string
}

type Clear struct{}

func (AddLine) kind() string        { return "add" }
func (RemoveLine) kind() string     { return "remove" }
func (UpdateQuantity) kind() string { return "update" }
func (Clear) kind() string          { return "clear" }

// Kind names the command variant, for logs and metrics.
func Kind(cmd Command) string { return cmd.kind() }

type Outcome int

const (
	NoOp Outcome = iota
	Added
	Merged
	Updated
	Removed
	Cleared
)

var outcomeNames = [...]string{"noop", "added", "merged", "updated", "removed", "cleared"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Result reports whether a command took effect. Line is the affected line
// after the change (or before it, for removals); zero for NoOp and Cleared.
type Result struct {
	Outcome Outcome
	Line    domain.CartLine
}

func (r Result) Applied() bool { return r.Outcome != NoOp }

// Apply returns the collection after cmd. The input slice is never modified.
func Apply(lines []domain.CartLine, cmd Command) ([]domain.CartLine, Result) {
	switch c := cmd.(type) {
	case AddLine:
		return applyAdd(lines, c)
	case RemoveLine:
		key := domain.LineKey{ProductID: c.ProductID, Size: domain.NormalizeSize(c.Size)}
		return applyRemove(lines, key)
	case UpdateQuantity:
		key := domain.LineKey{ProductID: c.ProductID, Size: domain.NormalizeSize(c.Size)}
		if c.Quantity <= 0 {
			return applyRemove(lines, key)
		}
		i := indexOf(lines, key)
		if i < 0 {
			return lines, Result{}
		}
		out := clone(lines)
		out[i].Quantity = c.Quantity
		return out, Result{Outcome: Updated, Line: out[i]}
	case Clear:
		if len(lines) == 0 {
			return lines, Result{}
		}
		return []domain.CartLine{}, Result{Outcome: Cleared}
	}
	return lines, Result{}
}

func applyAdd(lines []domain.CartLine, c AddLine) ([]domain.CartLine, Result) {
	if c.Quantity <= 0 {
		return lines, Result{}
	}
	size := domain.NormalizeSize(c.Size)
	if size == domain.NoSize {
		size = c.Product.DefaultSize()
	}
	key := domain.LineKey{ProductID: c.Product.ID, Size: size}
	if i := indexOf(lines, key); i >= 0 {
		out := clone(lines)
		out[i].Quantity += c.Quantity
		return out, Result{Outcome: Merged, Line: out[i]}
	}
	line := domain.CartLine{
		ProductID: c.Product.ID,
		Size:      size,
		Quantity:  c.Quantity,
		Name:      c.Product.Name,
		Price:     c.Product.Price,
		Image:     c.Product.Image(),
	}
	out := append(clone(lines), line)
	return out, Result{Outcome: Added, Line: line}
}

func applyRemove(lines []domain.CartLine, key domain.LineKey) ([]domain.CartLine, Result) {
	i := indexOf(lines, key)
	if i < 0 {
		return lines, Result{}
	}
	removed := lines[i]
	out := make([]domain.CartLine, 0, len(lines)-1)
	out = append(out, lines[:i]...)
	out = append(out, lines[i+1:]...)
	return out, Result{Outcome: Removed, Line: removed}
}

func indexOf(lines []domain.CartLine, key domain.LineKey) int {
	for i, l := range lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

func clone(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines), len(lines)+1)
	copy(out, lines)
	return out
}
