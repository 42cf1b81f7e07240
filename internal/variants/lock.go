package variants

import (
	"fmt"
	"sort"
	"strings"
)

// VariantInUseError lists locked variants an edit would delete or re-key.
type VariantInUseError struct {
	VariantIDs []string
}

func (e *VariantInUseError) Error() string {
	return fmt.Sprintf("variants referenced by active supplier offers: %s", strings.Join(e.VariantIDs, ", "))
}

// CheckLocks rejects deleting a locked variant or changing its combo key.
// A stored row missing from proposed counts as deleted. locked holds the
// variant ids active offers point at.
func CheckLocks(locked []string, existing, proposed []Row, explicitDeletes []string) error {
	if len(locked) == 0 {
		return nil
	}
	lockedSet := make(map[string]struct{}, len(locked))
	for _, id := range locked {
		lockedSet[id] = struct{}{}
	}

	deleted := make(map[string]struct{}, len(explicitDeletes))
	for _, id := range explicitDeletes {
		deleted[strings.TrimSpace(id)] = struct{}{}
	}
	proposedByID := make(map[string]Row, len(proposed))
	for _, row := range proposed {
		if id := strings.TrimSpace(row.ID); id != "" {
			proposedByID[id] = row
		}
	}

	offending := map[string]struct{}{}
	for id := range deleted {
		if _, ok := lockedSet[id]; ok {
			offending[id] = struct{}{}
		}
	}
	for _, row := range existing {
		if _, ok := lockedSet[row.ID]; !ok {
			continue
		}
		next, kept := proposedByID[row.ID]
		if !kept {
			offending[row.ID] = struct{}{}
			continue
		}
		before, _ := KeyOf(row.Selections)
		after, _ := KeyOf(next.Selections)
		if before != after {
			offending[row.ID] = struct{}{}
		}
	}

	if len(offending) == 0 {
		return nil
	}
	ids := make([]string, 0, len(offending))
	for id := range offending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &VariantInUseError{VariantIDs: ids}
}
