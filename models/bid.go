// bid.go - Seller candidates and their quotes

package models

// Seller is one candidate offered on the bids page.
type Seller struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Location     string  `json:"location"`
	PrinterModel string  `json:"printerModel"`
	Multiplier   float64 `json:"multiplier"`
}

// Key identifies the seller on the bids page: the email when known,
// since it is unique, otherwise the name.
func (s Seller) Key() string {
	if s.Email != "" {
		return s.Email
	}
	return s.Name
}

// Bid is a seller together with its formatted quote, e.g. "$25.00".
type Bid struct {
	Seller
	Price string `json:"price"`
}
