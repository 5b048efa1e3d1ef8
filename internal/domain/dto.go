package domain

import "github.com/shopspring/decimal"

type TransitionRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID           string             `json:"id"`
	CustomerName string             `json:"customer_name"`
	Items        []LineItemResponse `json:"items"`
	Total        string             `json:"total"`
	Status       string             `json:"status"`
	PickupCode   *string            `json:"pickup_code,omitempty"`
	CreatedAt    string             `json:"created_at"`
}

type LineItemResponse struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
}

type SaveMenuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	IsAvailable bool            `json:"is_available"`
}

type MenuItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	IsAvailable bool   `json:"is_available"`
}

func ToOrderResponse(o Order) OrderResponse {
	items := make([]LineItemResponse, 0, len(o.Items))
	for _, li := range o.Items {
		items = append(items, LineItemResponse{
			MenuItemID: li.MenuItemID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			Price:      li.Price.StringFixed(2),
		})
	}
	total := "0.00"
	if o.Total.Valid {
		total = o.Total.Decimal.StringFixed(2)
	}
	return OrderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Items:        items,
		Total:        total,
		Status:       string(o.Status),
		PickupCode:   o.PickupCode,
		CreatedAt:    o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ToMenuItemResponse(m MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price.StringFixed(2),
		Category:    m.Category,
		ImageURL:    m.ImageURL,
		IsAvailable: m.IsAvailable,
	}
}
