package promotion

import (
	"sort"

	"github.com/google/uuid"
)

// SummarizeApplied orders raw engine output into the receipt/audit list:
// line-level rules in cart line order, then cart-level rules, then buy-get
// benefits. Nothing is merged or recomputed; each entry stands on its own
// so the stored summary explains the total without re-running the engine.
func SummarizeApplied(lines []CartLine, result Result) AppliedRuleList {
	// Keyed by line, not product: two lines selling the same product keep
	// their own ordering slots.
	lineOrder := make(map[uuid.UUID]int, len(lines))
	for idx, line := range lines {
		lineOrder[line.LineID] = idx
	}

	rank := func(r AppliedRuleInfo) (int, int) {
		switch r.RuleCategory {
		case CategoryBuyGet:
			return 2, positionOf(r.LineID, lineOrder)
		case CategoryCartValue, CategoryCartQuantity:
			return 1, 0
		default:
			return 0, positionOf(r.LineID, lineOrder)
		}
	}

	out := make(AppliedRuleList, len(result.AppliedRules))
	copy(out, result.AppliedRules)
	sort.SliceStable(out, func(i, j int) bool {
		gi, pi := rank(out[i])
		gj, pj := rank(out[j])
		if gi != gj {
			return gi < gj
		}
		return pi < pj
	})
	return out
}

func positionOf(lineID *uuid.UUID, order map[uuid.UUID]int) int {
	if lineID == nil {
		return 0
	}
	if pos, ok := order[*lineID]; ok {
		return pos
	}
	return len(order)
}
