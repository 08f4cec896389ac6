// handler.go - Shared plumbing for the HTTP handlers
// Every route handler is a method on Handler, which carries the services
// built in main. Nothing here is global.

package handlers // Declares the package name

import ( // Import required packages
	"errors"   // For errors.As on binding errors
	"net/http" // HTTP status codes

	"plasticity-backend/auth"       // Session/Auth Gateway
	"plasticity-backend/bids"       // Bid Listing Service
	"plasticity-backend/config"     // Project config
	"plasticity-backend/database"   // User Directory and File Store
	"plasticity-backend/mailer"     // Password reset mail
	"plasticity-backend/middleware" // CSRF token lookup
	"plasticity-backend/mqtt"       // Upload events
	"plasticity-backend/payment"    // Checkout gateway
	"plasticity-backend/storage"    // Durable upload storage

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Field errors from form binding
	"github.com/sirupsen/logrus"             // Structured logging
)

// Deps are the collaborators a Handler needs.
type Deps struct {
	Config   *config.Config
	Log      *logrus.Logger
	Users    *database.UserDirectory
	Files    *database.FileStore
	Gateway  *auth.Gateway
	Tokens   *auth.ResetTokens
	Storage  storage.Store
	Bids     *bids.Service
	Events   mqtt.Publisher
	Mailer   mailer.Mailer
	Payments payment.Gateway
}

// Handler serves every route of the site.
type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	return &Handler{Deps: d}
}

// render adds the signed-in user, the CSRF token and pending flashes to data,
// saves the session and writes the page.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = h.Gateway.CurrentUser(c)
	data["csrf"] = middleware.CSRFToken(c)
	data["flashes"] = h.Gateway.Flashes(c)

	if err := h.Gateway.Save(c); err != nil {
		h.Log.WithError(err).Warn("save session")
	}
	c.HTML(status, page, data)
}

// redirect saves the session and sends the caller to location.
func (h *Handler) redirect(c *gin.Context, location string) {
	if err := h.Gateway.Save(c); err != nil {
		h.Log.WithError(err).Warn("save session")
	}
	c.Redirect(http.StatusFound, location)
}

// flashRedirect queues error messages and redirects.
func (h *Handler) flashRedirect(c *gin.Context, location string, messages ...string) {
	h.Gateway.Flash(c, auth.FlashErrors, messages...)
	h.redirect(c, location)
}

// fail logs err and renders the generic error page.
func (h *Handler) fail(c *gin.Context, err error) {
	h.Log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	_ = c.Error(err)
	h.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"title":   "Error",
		"message": "Something went wrong while handling your request. Please try again.",
	})
}

// Messages shown for failed form rules, keyed by struct field and rule.
var fieldMessages = map[string]string{
	"Email.required":          "Email is not valid",
	"Email.email":             "Email is not valid",
	"Password.required":       "Password cannot be blank",
	"Password.min":            "Password must be at least 4 characters long",
	"ConfirmPassword.eqfield": "Passwords do not match",
	"Multiplier.gte":          "Price multiplier must not be negative",
	"Seller.required":         "Choose a seller",
	"PaymentToken.required":   "Payment details are missing.",
}

// validationMessages turns a binding error into flash messages.
func validationMessages(err error) []string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return []string{"The submitted form is not valid"}
	}

	messages := make([]string, 0, len(fields))
	seen := make(map[string]bool)
	for _, fe := range fields {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is not valid"
		}
		if !seen[msg] {
			seen[msg] = true
			messages = append(messages, msg)
		}
	}
	return messages
}
