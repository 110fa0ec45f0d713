package domain

import (
	"sort"
)

// SortPlantsBySponsorOrder returns a new slice sorted by the given sort-key
// list. A plant's rank is the index of its ID in the list; plants whose ID is
// absent rank after all ranked plants. Ties are broken by name ascending, so
// an empty sort-key list yields a purely alphabetical ordering.
func SortPlantsBySponsorOrder(plants []Plant, sortOrder []string) []Plant {
	rankByID := make(map[string]int, len(sortOrder))
	for i, id := range sortOrder {
		if _, seen := rankByID[id]; seen {
			// First occurrence wins
			continue
		}
		rankByID[id] = i
	}

	sorted := make([]Plant, len(plants))
	copy(sorted, plants)

	sort.SliceStable(sorted, func(i, j int) bool {
		rankI := rankOf(rankByID, sorted[i].ID)
		rankJ := rankOf(rankByID, sorted[j].ID)
		if rankI != rankJ {
			return rankI < rankJ
		}
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}

const unrankedSentinel = int(^uint(0) >> 1)

func rankOf(rankByID map[string]int, id string) int {
	if rank, ok := rankByID[id]; ok {
		return rank
	}
	return unrankedSentinel
}
