package service

import "github.com/qzaway/foodcourt/internal/domain"

// mergeItems reconciles the on-screen list with the backend's list without
// reshuffling rows the user already sees.
//
// Rows keep their previous position and take the server's fields. The row
// with id resolvingTempID (a placeholder just confirmed by an add) becomes the
// first server row for the same menu item whose id was not on screen before.
// Rows the server no longer has are dropped, placeholders of other in-flight
// adds included. Server rows not matched are appended in server order.
func mergeItems(previous, server []domain.CartItem, resolvingTempID string) []domain.CartItem {
	lookup := make(map[string]domain.CartItem, len(server))
	for _, item := range server {
		item.IsOptimistic = false
		lookup[item.CartItemID] = item
	}

	onScreen := make(map[string]bool, len(previous))
	for _, item := range previous {
		onScreen[item.CartItemID] = true
	}

	merged := make([]domain.CartItem, 0, len(server))
	for _, prev := range previous {
		if resolvingTempID != "" && prev.CartItemID == resolvingTempID {
			for _, candidate := range server {
				if candidate.MenuItemID != prev.MenuItemID || onScreen[candidate.CartItemID] {
					continue
				}
				confirmed, ok := lookup[candidate.CartItemID]
				if !ok {
					continue
				}
				merged = append(merged, confirmed)
				delete(lookup, candidate.CartItemID)
				break
			}
			continue
		}

		if current, ok := lookup[prev.CartItemID]; ok {
			merged = append(merged, current)
			delete(lookup, prev.CartItemID)
		}
	}

	for _, item := range server {
		if remaining, ok := lookup[item.CartItemID]; ok {
			merged = append(merged, remaining)
			delete(lookup, item.CartItemID)
		}
	}

	return merged
}
