package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"

	"github.com/Domenick1991/coursedesk/internal/domain"
)

type createOrderRequest struct {
	CoursePackage string      `json:"course_package"`
	UserEmail     string      `json:"user_email"`
	Amount        json.Number `json:"amount"`
}

// CreateOrder calls POST /api/paypal/create-order. The amount goes on the
// wire as a decimal literal built from minor units.
func (c *Client) CreateOrder(ctx context.Context, token string, req domain.CreateOrderRequest) (*domain.ExternalOrder, error) {
	in := createOrderRequest{
		CoursePackage: req.PackageID,
		UserEmail:     req.BuyerEmail,
		Amount:        json.Number(req.Amount.Decimal()),
	}
	var out struct {
		OrderID string `json:"order_id"`
	}
	if err := c.do(ctx, "create order", http.MethodPost, "/api/paypal/create-order", token, in, &out); err != nil {
		return nil, err
	}
	if out.OrderID == "" {
		return nil, domain.NewBackendRejection("create order", http.StatusOK, "missing order id in response")
	}
	return &domain.ExternalOrder{OrderID: out.OrderID, Status: domain.OrderStatusCreated}, nil
}

// CaptureOrder calls POST /api/paypal/capture-order/{orderID}.
func (c *Client) CaptureOrder(ctx context.Context, token, orderID string) (*domain.CaptureResult, error) {
	raw := map[string]any{}
	path := "/api/paypal/capture-order/" + url.PathEscape(orderID)
	if err := c.do(ctx, "capture order", http.MethodPost, path, token, nil, &raw); err != nil {
		return nil, err
	}

	res := &domain.CaptureResult{OrderID: orderID, Raw: raw}
	if s, ok := raw["status"].(string); ok {
		res.Status = s
	}
	return res, nil
}

type packageWire struct {
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Currency    string      `json:"currency"`
	Description string      `json:"description"`
}

// Packages calls GET /api/payment/packages and returns the catalog sorted by
// id.
func (c *Client) Packages(ctx context.Context) ([]domain.CoursePackage, error) {
	var out map[string]packageWire
	if err := c.do(ctx, "list packages", http.MethodGet, "/api/payment/packages", "", nil, &out); err != nil {
		return nil, err
	}

	pkgs := make([]domain.CoursePackage, 0, len(out))
	for id, w := range out {
		price, err := domain.ParseMinorUnits(w.Price.String())
		if err != nil {
			return nil, &domain.Error{
				Kind:   domain.KindBackendRejection,
				Op:     "list packages",
				Status: http.StatusOK,
				Detail: "invalid price for package " + id,
				Err:    err,
			}
		}
		pkgs = append(pkgs, domain.CoursePackage{
			ID:          id,
			Name:        w.Name,
			Description: w.Description,
			Price:       price,
			Currency:    w.Currency,
		})
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })
	return pkgs, nil
}
