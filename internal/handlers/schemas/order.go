package schemas

import "github.com/Bessima/quicksms/internal/models"

type OrderRequest struct {
	AccountID int64  `json:"account_id" validate:"required"`
	Product   string `json:"product" validate:"required"`
	Region    string `json:"region" validate:"required"`
}

// ActionRequest names the requester pressing an order or pack button.
type ActionRequest struct {
	AccountID int64 `json:"account_id" validate:"required"`
}

type OrderResponse struct {
	Order   *models.Order `json:"order"`
	Actions []string      `json:"actions"`
	Warning string        `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
