package gateway

// Entry is the raw cart line as the remote cart service reports it. It is the
// source of truth; clients project it into a display shape.
type Entry struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// Product carries the nested catalog data attached to a cart entry.
type Product struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl"`
	Seller   Seller `json:"seller"`
}

// Seller identifies the shop a cart entry belongs to.
type Seller struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CreateInput is the payload for adding a product to the remote cart.
type CreateInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
