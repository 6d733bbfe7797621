package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// CheckoutRequest describes one hosted payment page.
type CheckoutRequest struct {
	OrderID  string
	Amount   int64
	ItemName string
	Customer Customer
}

type Customer struct {
	FullName string
	Email    string
	Phone    string
}

type CheckoutSession struct {
	Token       string
	RedirectURL string
}

// PaymentGateway hosts the payment page and authenticates its callbacks.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyNotification(orderID, statusCode, grossAmount, signature string) bool
}

// MidtransGateway uses Snap for checkout.
type MidtransGateway struct {
	client    snap.Client
	serverKey string
}

func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	g := &MidtransGateway{serverKey: serverKey}
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("checkout amount must be positive, got %d", req.Amount)
	}
	first, last := splitName(req.Customer.FullName)
	sr := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       req.OrderID,
			Price:    req.Amount,
			Qty:      1,
			Name:     truncate(req.ItemName, 50),
			Category: "Library fine",
		}},
	}
	resp, merr := g.client.CreateTransaction(sr)
	if merr != nil {
		return nil, fmt.Errorf("midtrans create transaction: %s", merr.GetMessage())
	}
	return &CheckoutSession{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) VerifyNotification(orderID, statusCode, grossAmount, signature string) bool {
	return VerifyMidtransSignature(g.serverKey, orderID, statusCode, grossAmount, signature)
}

// VerifyMidtransSignature checks SHA512(order_id + status_code + gross_amount + server_key).
func VerifyMidtransSignature(serverKey, orderID, statusCode, grossAmount, signature string) bool {
	if signature == "" || serverKey == "" {
		return false
	}
	want := MidtransSignature(serverKey, orderID, statusCode, grossAmount)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(signature))) == 1
}

func MidtransSignature(serverKey, orderID, statusCode, grossAmount string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if i := strings.LastIndex(full, " "); i > 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
