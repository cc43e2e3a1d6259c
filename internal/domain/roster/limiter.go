package roster

// Unlimited marks a team whose roster edits are never limited or penalized.
const Unlimited = -1

// Outcome is the result of applying one roster edit against the free-change budget.
type Outcome struct {
	Changes              int
	Penalty              int
	RemainingFreeChanges int
}

// CountChanges counts distinct ids in previous that are absent from next.
func CountChanges(previous, next []string) int {
	keep := make(map[string]struct{}, len(next))
	for _, id := range next {
		keep[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(previous))
	changes := 0
	for _, id := range previous {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := keep[id]; !ok {
			changes++
		}
	}
	return changes
}

// ApplyEdit spends free changes and prices the excess at changeCost each.
// A negative limit is unlimited and stays untouched; the limit never goes below zero.
func ApplyEdit(freeChangeLimit, changes, changeCost int) Outcome {
	if changes < 0 {
		changes = 0
	}
	if freeChangeLimit < 0 {
		return Outcome{Changes: changes, RemainingFreeChanges: freeChangeLimit}
	}
	if changes <= freeChangeLimit {
		return Outcome{Changes: changes, RemainingFreeChanges: freeChangeLimit - changes}
	}
	return Outcome{
		Changes:              changes,
		Penalty:              (changes - freeChangeLimit) * changeCost,
		RemainingFreeChanges: 0,
	}
}
