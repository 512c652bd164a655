package domain

import "time"

// CoursePackage is a purchasable item from the backend catalog.
type CoursePackage struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       MinorUnits `json:"price_minor"`
	Currency    string     `json:"currency"`
}

// PurchaseIntent is a single attempted purchase. It is discarded once its
// checkout reaches a terminal state.
type PurchaseIntent struct {
	ID         string
	PackageID  string
	Amount     MinorUnits
	Currency   string
	BuyerEmail string
	CreatedAt  time.Time
}

type OrderStatus string

const (
	OrderStatusCreated  OrderStatus = "CREATED"
	OrderStatusApproved OrderStatus = "APPROVED"
	OrderStatusCaptured OrderStatus = "CAPTURED"
	OrderStatusFailed   OrderStatus = "FAILED"
)

// ExternalOrder is the payment provider's order for exactly one PurchaseIntent.
type ExternalOrder struct {
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
}

// CreateOrderRequest is what the payment backend needs to open an order.
type CreateOrderRequest struct {
	PackageID  string
	BuyerEmail string
	Amount     MinorUnits
}

// CaptureResult is the backend's answer to a capture. Raw keeps the full
// response body for the presentation layer.
type CaptureResult struct {
	OrderID string
	Status  string
	Raw     map[string]any
}

type CheckoutState string

const (
	CheckoutIdle             CheckoutState = "idle"
	CheckoutCreating         CheckoutState = "creating"
	CheckoutAwaitingApproval CheckoutState = "awaiting_approval"
	CheckoutCapturing        CheckoutState = "capturing"
	CheckoutCaptured         CheckoutState = "captured"
	CheckoutFailed           CheckoutState = "failed"
	CheckoutAbandoned        CheckoutState = "abandoned"
)

func (s CheckoutState) Terminal() bool {
	return s == CheckoutCaptured || s == CheckoutFailed || s == CheckoutAbandoned
}
