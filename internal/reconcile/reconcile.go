// Package reconcile projects raw cart entries into display-ready items and
// decides, per mutation, whether a server response is enough to patch local
// state or a full resync is needed.
package reconcile

import (
	"github.com/angelmondragon/cartsync/internal/gateway"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Item is the client-normalized projection of a cart entry: nested
// product/seller fields flattened, price pre-formatted for display.
type Item struct {
	ID              string
	ProductID       string
	Title           string
	UnitPriceAmount int64
	DisplayPrice    string
	ImageURL        string
	Quantity        int
	ShopName        string
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a whole-unit amount with thousands grouping.
func FormatPrice(amount int64) string {
	return pricePrinter.Sprintf("%d", amount)
}

// MapEntry flattens one raw entry into an Item, preserving the entry id.
func MapEntry(entry gateway.Entry) Item {
	return Item{
		ID:              entry.ID,
		ProductID:       entry.ProductID,
		Title:           entry.Product.Name,
		UnitPriceAmount: entry.Product.Price,
		DisplayPrice:    FormatPrice(entry.Product.Price),
		ImageURL:        entry.Product.ImageURL,
		Quantity:        entry.Quantity,
		ShopName:        entry.Product.Seller.Username,
	}
}

// MapEntries maps a server collection wholesale.
func MapEntries(entries []gateway.Entry) []Item {
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, MapEntry(entry))
	}
	return items
}

// AfterCreate resolves the state following a create call. When the server
// echoed a usable collection it replaces local items wholesale; otherwise the
// caller must resync.
func AfterCreate(entries []gateway.Entry, usable bool) (items []Item, resync bool) {
	if !usable {
		return nil, true
	}
	return MapEntries(entries), false
}

// AfterUpdate resolves the state following an update-quantity call. A single
// echoed entry patches only the quantity of the matching local item; the
// echo is not trusted for any other field. A missing echo, or an echo for an
// entry not held locally, forces a resync.
func AfterUpdate(current []Item, entry *gateway.Entry) (items []Item, resync bool) {
	if entry == nil {
		return nil, true
	}

	patched := make([]Item, len(current))
	found := false
	for i, item := range current {
		if item.ID == entry.ID {
			item.Quantity = entry.Quantity
			found = true
		}
		patched[i] = item
	}
	if !found {
		return nil, true
	}
	return patched, false
}

// AfterDelete drops the removed entry from local state. Removal is
// unambiguous, so no resync path exists here.
func AfterDelete(current []Item, entryID string) []Item {
	items := make([]Item, 0, len(current))
	for _, item := range current {
		if item.ID == entryID {
			continue
		}
		items = append(items, item)
	}
	return items
}
