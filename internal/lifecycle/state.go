package lifecycle

import "github.com/erazemk/najdeno/internal/model"

// itemTransitions lists the status changes an item may undergo.
var itemTransitions = map[string][]string{
	model.ItemStatusOpen:    {model.ItemStatusClaimed},
	model.ItemStatusClaimed: {model.ItemStatusReturned, model.ItemStatusOpen},
}

// claimTransitions lists the status changes a claim may undergo.
var claimTransitions = map[string][]string{
	model.ClaimStatusPending: {model.ClaimStatusApproved, model.ClaimStatusDenied},
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// itemStatusAfter returns the item status that follows a claim decision.
func itemStatusAfter(decision string) string {
	if decision == model.ClaimStatusApproved {
		return model.ItemStatusReturned
	}
	return model.ItemStatusOpen
}
