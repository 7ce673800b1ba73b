package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
	"github.com/storefront/backend/pkg/pagination"
)

// OrderItemDTO is one snapshot line of an order. UnitPrice is the price at
// the moment the order was placed, not the product's current price.
type OrderItemDTO struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Title      string          `json:"title"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Items         []OrderItemDTO      `json:"items"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	PlacedAt      time.Time           `json:"placed_at"`
}

// NewOrderDTO maps the order and its snapshot lines to the API shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		PaymentStatus: order.PaymentStatus,
		Items:         make([]OrderItemDTO, 0, len(order.Items)),
		PlacedAt:      order.PlacedAt,
	}
	total := decimal.Zero
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:         item.ID,
			ProductID:  item.ProductID,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			TotalPrice: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Product != nil {
			line.Title = item.Product.Title
		}
		total = total.Add(line.TotalPrice)
		dto.Items = append(dto.Items, line)
	}
	dto.TotalPrice = total
	return dto
}

// OrderListResult is one page of orders plus paging metadata.
type OrderListResult struct {
	Items []OrderDTO      `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}
