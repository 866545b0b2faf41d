/*
idgen.go - Sequential identifier allocation and re-densification

PURPOSE:
  Record ids are dense numeric strings "1".."N". Allocation takes the max of
  the existing ids plus one; after a deletion the remaining records are
  renumbered so the sequence stays contiguous.

PURE FUNCTIONS:
  Both NextID and Renumber are pure over an already-fetched snapshot. If the
  snapshot fetch fails the caller fails the whole operation - ids are never
  guessed from an unknown state, since a wrong guess can collide with a live
  record.

IDEMPOTENCE:
  Renumber over an already-dense collection returns an empty assignment, so
  running it twice produces no further updates.

SEE ALSO:
  - ledger.go: Allocates item ids, renumbers after DeleteItem
  - sales.go: Allocates sale ids
*/
package inventory

import (
	"sort"
	"strconv"
)

// NextID returns the next sequential id for a collection: max(ids)+1, or "1"
// when the collection is empty. Ids that do not parse as positive integers
// are ignored, matching how the store serializes them.
func NextID(ids []string) string {
	max := 0
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// Renumber assigns ids "1".."N" by ascending numeric id order and returns the
// minimal old-id to new-id assignment needed to restore contiguity. Records
// whose id is already correct are omitted.
func Renumber(items []Item) map[string]string {
	ordered := make([]Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return numericID(ordered[i].ID) < numericID(ordered[j].ID)
	})

	assignment := make(map[string]string)
	for i, it := range ordered {
		newID := strconv.Itoa(i + 1)
		if it.ID != newID {
			assignment[it.ID] = newID
		}
	}
	return assignment
}

func numericID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}
