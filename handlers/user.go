// user.go - Account handlers: login, signup, profile, password reset

package handlers // Declares the package name

import ( // Import required packages
	"errors"   // Error kind checks
	"net/http" // HTTP status codes
	"strings"  // Email normalisation
	"time"     // Reset token clock

	"plasticity-backend/apperr" // Error kinds
	"plasticity-backend/auth"   // Session keys and password hashing
	"plasticity-backend/models" // User model

	"github.com/gin-gonic/gin" // Gin web framework
)

type LoginInput struct { // Struct for login form
	Email    string `form:"email" binding:"required,email"` // Email (required)
	Password string `form:"password" binding:"required"`    // Password (required)
}

type SignupInput struct { // Struct for signup form
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"min=4"`
	ConfirmPassword string `form:"confirmPassword" binding:"eqfield=Password"`
	IsSeller        string `form:"isSeller"` // Checkbox, "on" when ticked
}

type ProfileInput struct { // Struct for the profile form
	Email             string  `form:"email" binding:"required,email"`
	Name              string  `form:"name"`
	Location          string  `form:"location"`
	PrinterModel      string  `form:"printerModel"`
	PrinterResolution string  `form:"printerResolution"`
	ExamplePrints     string  `form:"examplePrints"`
	SupportsABS       string  `form:"supportsABS"`
	SupportsPLA       string  `form:"supportsPLA"`
	Multiplier        float64 `form:"multiplier,default=1" binding:"gte=0"`
}

type PasswordInput struct { // Struct for password change and reset
	Password        string `form:"password" binding:"min=4"`
	ConfirmPassword string `form:"confirmPassword" binding:"eqfield=Password"`
}

type ForgotInput struct {
	Email string `form:"email" binding:"required,email"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetLogin - GET /login
func (h *Handler) GetLogin(c *gin.Context) {
	if h.Gateway.CurrentUser(c) != nil {
		h.redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"title": "Login"})
}

// PostLogin - POST /login
// Sends the user back to the page that asked for a login, or home.
func (h *Handler) PostLogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/login", validationMessages(err)...)
		return
	}

	_, err := h.Gateway.Login(c, normalizeEmail(input.Email), input.Password)
	if errors.Is(err, apperr.ErrAuthFailure) {
		h.flashRedirect(c, "/login", "Invalid email or password.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	target := h.Gateway.Value(c, auth.KeyReturnTo)
	h.Gateway.Delete(c, auth.KeyReturnTo)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = "/" // Only local paths
	}
	h.Gateway.Flash(c, auth.FlashSuccess, "Success! You are logged in.")
	h.redirect(c, target)
}

// Logout - GET /logout
func (h *Handler) Logout(c *gin.Context) {
	h.Gateway.Logout(c)
	h.redirect(c, "/")
}

// GetSignup - GET /signup
func (h *Handler) GetSignup(c *gin.Context) {
	if h.Gateway.CurrentUser(c) != nil {
		h.redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "signup.html", gin.H{"title": "Create Account"})
}

// PostSignup - POST /signup
// Creates the account and logs it in.
func (h *Handler) PostSignup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/signup", validationMessages(err)...)
		return
	}

	hash, err := auth.HashPassword(input.Password) // Hash password
	if err != nil {
		h.fail(c, err)
		return
	}
	user := &models.User{
		Email:    normalizeEmail(input.Email),
		Password: hash,
		IsSeller: input.IsSeller == "on",
	}
	err = h.Users.Create(c.Request.Context(), user) // Save user to DB
	if errors.Is(err, apperr.ErrDuplicateEmail) {
		h.flashRedirect(c, "/signup", "Account with that email address already exists.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Log.WithField("user_id", user.ID).Info("account created")
	h.Gateway.LogIn(c, user)
	h.redirect(c, "/account")
}

// GetAccount - GET /account
func (h *Handler) GetAccount(c *gin.Context) {
	h.render(c, http.StatusOK, "account.html", gin.H{"title": "Account Management"})
}

// GetHistory - GET /history
func (h *Handler) GetHistory(c *gin.Context) {
	user := h.Gateway.CurrentUser(c)
	files, err := h.Files.History(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "history.html", gin.H{"title": "User History", "uploadedFiles": files})
}

// PostUpdateProfile - POST /account/profile
// Sellers also update their printer and price multiplier.
func (h *Handler) PostUpdateProfile(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/account", validationMessages(err)...)
		return
	}

	ctx := c.Request.Context()
	user := h.Gateway.CurrentUser(c)
	err := h.Users.UpdateProfile(ctx, user.ID, normalizeEmail(input.Email), models.Profile{
		Name:     input.Name,
		Location: input.Location,
	})
	if errors.Is(err, apperr.ErrDuplicateEmail) {
		h.flashRedirect(c, "/account", "The email address you have entered is already associated with an account.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	if user.IsSeller {
		printer := models.Printer{
			Model:             input.PrinterModel,
			SupportsABS:       input.SupportsABS == "on",
			SupportsPLA:       input.SupportsPLA == "on",
			HighestResolution: input.PrinterResolution,
			ExamplePrints:     input.ExamplePrints,
		}
		if err := h.Users.UpdatePrinter(ctx, user.ID, printer, input.Multiplier); err != nil {
			h.fail(c, err)
			return
		}
	}

	h.Gateway.Flash(c, auth.FlashSuccess, "Profile information updated.")
	h.redirect(c, "/account")
}

// PostUpdatePassword - POST /account/password
func (h *Handler) PostUpdatePassword(c *gin.Context) {
	var input PasswordInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/account", validationMessages(err)...)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Users.UpdatePassword(c.Request.Context(), h.Gateway.CurrentUser(c).ID, hash); err != nil {
		h.fail(c, err)
		return
	}

	h.Gateway.Flash(c, auth.FlashSuccess, "Password has been changed.")
	h.redirect(c, "/account")
}

// PostDeleteAccount - POST /account/delete
// Removes the account with its history and ends the login.
func (h *Handler) PostDeleteAccount(c *gin.Context) {
	user := h.Gateway.CurrentUser(c)
	if err := h.Users.Delete(c.Request.Context(), user.ID); err != nil {
		h.fail(c, err)
		return
	}

	h.Log.WithField("user_id", user.ID).Info("account deleted")
	h.Gateway.Logout(c)
	h.Gateway.Flash(c, auth.FlashInfo, "Your account has been deleted.")
	h.redirect(c, "/")
}

// GetForgot - GET /forgot
func (h *Handler) GetForgot(c *gin.Context) {
	if h.Gateway.CurrentUser(c) != nil {
		h.redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "forgot.html", gin.H{"title": "Forgot Password"})
}

// PostForgot - POST /forgot
// Issues a reset token and mails the reset link.
func (h *Handler) PostForgot(c *gin.Context) {
	var input ForgotInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/forgot", validationMessages(err)...)
		return
	}

	ctx := c.Request.Context()
	email := normalizeEmail(input.Email)
	user, err := h.Users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		h.flashRedirect(c, "/forgot", "No account with that email address exists.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	token, expires, err := h.Tokens.Issue(user.ID, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		h.fail(c, err)
		return
	}
	link := strings.TrimRight(h.Config.BaseURL, "/") + "/reset/" + token
	if err := h.Mailer.SendPasswordReset(user.Email, link); err != nil {
		h.fail(c, err)
		return
	}

	h.Gateway.Flash(c, auth.FlashInfo, "An e-mail has been sent to "+user.Email+" with further instructions.")
	h.redirect(c, "/forgot")
}

// resetUser resolves the account behind a reset token. Unknown, expired or
// tampered tokens yield apperr.ErrNotFoundOrExpired.
func (h *Handler) resetUser(c *gin.Context, token string) (*models.User, error) {
	user, err := h.Users.FindByResetToken(c.Request.Context(), token, time.Now())
	if err != nil {
		return nil, err
	}
	id, err := h.Tokens.Verify(token)
	if err != nil || id != user.ID {
		return nil, apperr.ErrNotFoundOrExpired
	}
	return user, nil
}

// GetReset - GET /reset/:token
func (h *Handler) GetReset(c *gin.Context) {
	if h.Gateway.CurrentUser(c) != nil {
		h.redirect(c, "/")
		return
	}

	token := c.Param("token")
	_, err := h.resetUser(c, token)
	if errors.Is(err, apperr.ErrNotFoundOrExpired) {
		h.flashRedirect(c, "/forgot", "Password reset token is invalid or has expired.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "reset.html", gin.H{"title": "Password Reset", "token": token})
}

// PostReset - POST /reset/:token
// Sets the new password, clears the token and logs the user in.
func (h *Handler) PostReset(c *gin.Context) {
	token := c.Param("token")
	var input PasswordInput
	if err := c.ShouldBind(&input); err != nil {
		h.flashRedirect(c, "/reset/"+token, validationMessages(err)...)
		return
	}

	user, err := h.resetUser(c, token)
	if errors.Is(err, apperr.ErrNotFoundOrExpired) {
		h.flashRedirect(c, "/forgot", "Password reset token is invalid or has expired.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.fail(c, err)
		return
	}

	h.Gateway.LogIn(c, user)
	h.Gateway.Flash(c, auth.FlashSuccess, "Success! Your password has been changed.")
	h.redirect(c, "/")
}
