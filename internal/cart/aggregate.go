package cart

import "github.com/angelmondragon/cartsync/internal/reconcile"

// Aggregates are always derived from the item list at read time. Storing
// them would open a drift window between items and totals.

// TotalAmount sums unit price times quantity across the cart.
func TotalAmount(items []reconcile.Item) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPriceAmount * int64(item.Quantity)
	}
	return total
}

// ItemCount sums quantities across the cart.
func ItemCount(items []reconcile.Item) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
