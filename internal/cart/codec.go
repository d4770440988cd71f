package cart

import (
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
)

// EncodeLines serializes the collection as a JSON array.
func EncodeLines(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

// DecodeLines parses a stored collection. Lines that would break the store's
// invariants (quantity < 1, duplicate keys) are dropped; later duplicates lose.
func DecodeLines(b []byte) ([]domain.CartLine, error) {
	var raw []domain.CartLine
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode cart lines: %w", err)
	}
	out := make([]domain.CartLine, 0, len(raw))
	seen := make(map[domain.LineKey]bool, len(raw))
	for _, l := range raw {
		l.Size = domain.NormalizeSize(l.Size)
		if l.Quantity < 1 || seen[l.Key()] {
			continue
		}
		seen[l.Key()] = true
		out = append(out, l)
	}
	return out, nil
}
