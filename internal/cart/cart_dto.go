package cart

// ==================== DOMAIN ====================

// Kind classifies a cart line. It is an explicit discriminant set once when
// the item is added; identity (ID) and classification stay independent.
type Kind string

const (
	KindProduct Kind = "product"
	KindService Kind = "service"
	KindPackage Kind = "package"
)

// Item is one cart line. A nil Price means "price pending", which is a valid
// state: the line still counts toward quantity, it just contributes zero to
// the subtotal until the catalog resolves it.
type Item struct {
	ID         string   `json:"id"`
	Kind       Kind     `json:"kind"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Currency   string   `json:"currency"`
	Brand      string   `json:"brand,omitempty"`
	CoverImage string   `json:"coverImage,omitempty"`
	Quantity   int      `json:"quantity"`
}

// Physical reports whether the line requires fulfillment by shipping or
// pickup. Services are booked, never shipped.
func (it Item) Physical() bool {
	return it.Kind == KindProduct || it.Kind == KindPackage
}

// ==================== REQUEST STRUCTS ====================

type AddItemRequest struct {
	ID         string   `json:"id" validate:"required"`
	Kind       string   `json:"kind" validate:"omitempty,oneof=product service package"`
	Title      string   `json:"title" validate:"required"`
	Slug       string   `json:"slug"`
	Price      *float64 `json:"price"`
	Currency   string   `json:"currency"`
	Brand      string   `json:"brand"`
	CoverImage string   `json:"coverImage"`
	Quantity   int      `json:"quantity"`
}

type UpdateQtyRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ==================== RESPONSE STRUCTS ====================

type CartDetailResponse struct {
	Items            []Item              `json:"items"`
	Subtotal         float64             `json:"subtotal"`
	PhysicalSubtotal float64             `json:"physicalSubtotal"`
	Currency         string              `json:"currency"`
	ItemCount        int                 `json:"itemCount"`
	FreeShipping     *FreeShippingStatus `json:"freeShipping,omitempty"`
}

type FreeShippingStatus struct {
	Threshold float64 `json:"threshold"`
	Remaining float64 `json:"remaining"`
	Percent   int     `json:"percent"`
	Unlocked  bool    `json:"unlocked"`
}

type CartCountResponse struct {
	Count int `json:"count"`
}
