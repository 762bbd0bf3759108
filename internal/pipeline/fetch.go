package pipeline

import (
	"context"
)

// fetchBatch asks brew about exactly names and builds an item for every cask
// and formula whose name matches one of them. Names brew does not know are
// dropped. A name can yield both a cask and a formula.
func (h *Handler) fetchBatch(ctx context.Context, names []string) ([]Item, error) {
	m, err := h.details.Info(ctx, names)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(names))
	for _, name := range names {
		if c, ok := m.Cask(name); ok {
			items = append(items, h.packageItem(CaskDetail(c)))
		}
		if f, ok := m.Formula(name); ok {
			items = append(items, h.packageItem(FormulaDetail(f)))
		}
	}
	return items, nil
}
