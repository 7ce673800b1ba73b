package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/pkg/db/models"
)

// CartItemDTO is the API representation of one cart line.
type CartItemDTO struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Title      string          `json:"title"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartDTO is the API representation of a cart with line totals.
type CartDTO struct {
	ID         uuid.UUID       `json:"id"`
	Items      []CartItemDTO   `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewCartDTO maps the cart and its lines to the API shape. Line and cart
// totals use the current product price; nothing is snapshotted until the
// cart becomes an order.
func NewCartDTO(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}
	dto := &CartDTO{
		ID:        cart.ID,
		Items:     make([]CartItemDTO, 0, len(cart.Items)),
		CreatedAt: cart.CreatedAt,
	}
	total := decimal.Zero
	for _, item := range cart.Items {
		line := CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.Title = item.Product.Title
			line.UnitPrice = item.Product.UnitPrice
			line.TotalPrice = item.Product.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(line.TotalPrice)
		}
		dto.Items = append(dto.Items, line)
	}
	dto.TotalPrice = total
	return dto
}
