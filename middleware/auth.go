// auth.go - Session authentication middleware
// This file gates routes on the identity held in the caller's session
//
// Authentication Flow:
// 1. LoadUser reads the user id from the session and loads the account
// 2. RequireAuthenticated lets known users through
// 3. Anonymous callers are sent to /login, remembering where they were going

package middleware // Declares the package name

import ( // Import required packages
	"net/http" // HTTP status codes

	"plasticity-backend/auth" // Session/Auth Gateway

	"github.com/gin-gonic/gin" // Gin web framework (for middleware)
)

// LoadUser - Returns a Gin middleware that resolves the session user
// Every route runs it so templates can show the signed-in account
func LoadUser(gw *auth.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		gw.LoadUser(c) // Store *models.User in context when the session has one
		c.Next()
	}
}

// RequireAuthenticated - Returns a Gin middleware for protected pages
//
// How it works:
// 1. Checks the user resolved by LoadUser
// 2. If missing, stores the requested path as the post-login target
// 3. Redirects to /login and aborts
func RequireAuthenticated(gw *auth.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gw.CurrentUser(c) != nil {
			c.Next() // Authenticated, continue to the handler
			return
		}

		if c.Request.Method == http.MethodGet {
			gw.SetValue(c, auth.KeyReturnTo, c.Request.URL.RequestURI()) // Come back here after login
		}
		_ = gw.Save(c)

		c.Redirect(http.StatusFound, "/login") // Send to login page
		c.Abort()
	}
}
