package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
)

const serviceName = "razorpay"

// orderAPI is the slice of the razorpay client this package uses
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayGateway struct {
	keyID     string
	keySecret string
	orders    orderAPI
}

func NewRazorpayGateway(keyID, keySecret string) Gateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &razorpayGateway{keyID: keyID, keySecret: keySecret, orders: client.Order}
}

func (g *razorpayGateway) KeyID() string { return g.keyID }

func (g *razorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	logger.ExternalServiceCall(serviceName, "orders.create", "receipt", req.ReceiptID, "amount", req.Amount)

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":   req.Amount * 100,
		"currency": req.Currency,
		"receipt":  req.ReceiptID,
		"notes":    notes,
	}

	resp, err := g.orders.Create(data, nil)
	if err != nil {
		logger.ExternalServiceResult(serviceName, "orders.create", err, "receipt", req.ReceiptID)
		return nil, fmt.Errorf("%w: create order: %v", domain.ErrUpstreamFailure, err)
	}

	id, _ := resp["id"].(string)
	if id == "" {
		err = fmt.Errorf("%w: create order: response without id", domain.ErrUpstreamFailure)
		logger.ExternalServiceResult(serviceName, "orders.create", err, "receipt", req.ReceiptID)
		return nil, err
	}

	order := &Order{ID: id, Currency: req.Currency, Receipt: req.ReceiptID, Amount: req.Amount * 100}
	// JSON numbers decode as float64
	if amount, ok := resp["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if currency, ok := resp["currency"].(string); ok && currency != "" {
		order.Currency = currency
	}

	logger.ExternalServiceResult(serviceName, "orders.create", nil, "orderID", order.ID)
	return order, nil
}

func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.keySecret, orderID, paymentID, signature)
}
