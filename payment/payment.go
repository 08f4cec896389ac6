// Package payment hands a checkout to the payment gateway.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Charge is one checkout of a quoted bid.
type Charge struct {
	Email    string // Buyer, empty for anonymous checkouts
	Seller   string
	FileName string
	Amount   string // Formatted quote, e.g. "$25.00"
	Token    string // Gateway payment token posted by the checkout form
}

// Gateway is the external payment processor.
type Gateway interface {
	Charge(ctx context.Context, c Charge) (receipt string, err error)
}

// Offline accepts every charge that carries a token and issues a local receipt id.
type Offline struct {
	Log *logrus.Logger
}

func (o Offline) Charge(ctx context.Context, c Charge) (string, error) {
	if c.Token == "" {
		return "", fmt.Errorf("charge %s: missing payment token", c.Amount)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	receipt := uuid.NewString()
	o.Log.WithFields(logrus.Fields{
		"receipt": receipt,
		"seller":  c.Seller,
		"file":    c.FileName,
		"amount":  c.Amount,
	}).Info("checkout accepted")
	return receipt, nil
}
