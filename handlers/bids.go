// bids.go - Bid listing, seller selection and checkout

package handlers // Declares the package name

import ( // Import required packages
	"errors"   // Error kind checks
	"net/http" // HTTP status codes
	"net/url"  // Receipt query string

	"plasticity-backend/apperr"  // Error kinds
	"plasticity-backend/auth"    // Session keys
	"plasticity-backend/bids"    // Bid Listing Service
	"plasticity-backend/payment" // Checkout gateway

	"github.com/gin-gonic/gin" // Gin web framework
)

type ChooseBidInput struct { // Struct for POST /bids/checkout
	Seller string `form:"seller" binding:"required"`
}

type CheckoutInput struct { // Struct for POST /checkout
	PaymentToken string `form:"paymentToken" binding:"required"`
}

// GetBids - GET /bids
// Prices every candidate seller. Any failure shows the error page, never a
// partial listing.
func (h *Handler) GetBids(c *gin.Context) {
	listing, err := h.Bids.List(c.Request.Context(), bids.PlaceholderFileID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "bids.html", gin.H{
		"title":    "Bids",
		"filename": h.Gateway.Value(c, auth.KeyFileName),
		"users":    listing,
	})
}

// PostBids - POST /bids
// Asks for quotes on the model in the session.
func (h *Handler) PostBids(c *gin.Context) {
	if h.Gateway.Value(c, auth.KeyFilePath) == "" {
		h.flashRedirect(c, "/upload", "Upload a model before asking for bids.")
		return
	}
	h.redirect(c, "/bids")
}

// PostChooseBid - POST /bids/checkout
// Re-prices the chosen seller and keeps the quote in the session.
func (h *Handler) PostChooseBid(c *gin.Context) {
	var input ChooseBidInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/bids", validationMessages(err)...)
		return
	}

	bid, err := h.Bids.Quote(c.Request.Context(), bids.PlaceholderFileID, input.Seller)
	if errors.Is(err, apperr.ErrNotFound) {
		h.flashRedirect(c, "/bids", "That seller is no longer available.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Gateway.SetValue(c, auth.KeyBidSeller, bid.Name)
	h.Gateway.SetValue(c, auth.KeyBidPrice, bid.Price)
	h.render(c, http.StatusOK, "checkout.html", gin.H{
		"title":    "Checkout",
		"bid":      bid,
		"filename": h.Gateway.Value(c, auth.KeyFileName),
	})
}

// PostCheckout - POST /checkout
// Charges the selected bid through the payment gateway.
func (h *Handler) PostCheckout(c *gin.Context) {
	seller := h.Gateway.Value(c, auth.KeyBidSeller)
	price := h.Gateway.Value(c, auth.KeyBidPrice)
	if seller == "" || price == "" {
		h.flashRedirect(c, "/bids", "Choose a bid before checking out.")
		return
	}

	var input CheckoutInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/bids", validationMessages(err)...)
		return
	}

	charge := payment.Charge{
		Seller:   seller,
		FileName: h.Gateway.Value(c, auth.KeyFileName),
		Amount:   price,
		Token:    input.PaymentToken,
	}
	if user := h.Gateway.CurrentUser(c); user != nil {
		charge.Email = user.Email
	}

	receipt, err := h.Payments.Charge(c.Request.Context(), charge)
	if err != nil {
		h.Log.WithError(err).WithField("seller", seller).Warn("payment declined")
		h.flashRedirect(c, "/bids", "Your payment could not be processed.")
		return
	}
	h.redirect(c, "/checkout/postCheckout?receipt="+url.QueryEscape(receipt))
}

// GetPostCheckout - GET /checkout/postCheckout
// Shows the receipt and clears the selected bid.
func (h *Handler) GetPostCheckout(c *gin.Context) {
	seller := h.Gateway.Value(c, auth.KeyBidSeller)
	price := h.Gateway.Value(c, auth.KeyBidPrice)
	h.Gateway.Delete(c, auth.KeyBidSeller, auth.KeyBidPrice)

	h.render(c, http.StatusOK, "receipt.html", gin.H{
		"title":   "Thank you",
		"receipt": c.Query("receipt"),
		"seller":  seller,
		"price":   price,
	})
}
