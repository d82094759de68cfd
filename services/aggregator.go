package services

import "github.com/yeremiapane/popup-pos/models"

// DeriveOrderStatus classifies a set of item statuses into the order-level
// status. The same rule runs server-side after every item mutation and
// client-side when the kitchen display groups a category-filtered subset,
// so both stay consistent by construction. Input ordering is irrelevant.
//
// Rules, in precedence order:
//   - every item cancelled           -> cancelled
//   - all active items picked_up     -> picked_up
//   - all active items done/picked_up -> ready
//   - any active item past new       -> in_progress
//   - otherwise                      -> new
//
// "Active" excludes cancelled items.
func DeriveOrderStatus(statuses []string) string {
	if len(statuses) == 0 {
		return models.OrderStatusNew
	}

	var active, picked, settled, started int
	for _, s := range statuses {
		if s == models.ItemStatusCancelled {
			continue
		}
		active++
		switch s {
		case models.ItemStatusPickedUp:
			picked++
			settled++
			started++
		case models.ItemStatusDone:
			settled++
			started++
		case models.ItemStatusInProgress:
			started++
		}
	}

	if active == 0 {
		return models.OrderStatusCancelled
	}
	if picked == active {
		return models.OrderStatusPickedUp
	}
	if settled == active {
		return models.OrderStatusReady
	}
	if started > 0 {
		return models.OrderStatusInProgress
	}
	return models.OrderStatusNew
}
