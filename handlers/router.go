// router.go - Route table

package handlers // Declares the package name

import ( // Import required packages
	"html/template" // Parsed views

	"plasticity-backend/middleware" // Logging, CSRF and auth gates

	"github.com/gin-gonic/gin" // Gin web framework
)

// NewRouter wires every route of the site onto a new engine.
func NewRouter(h *Handler, views *template.Template) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(h.Log), gin.Recovery())
	r.SetHTMLTemplate(views)

	// Stored models, served before the session and CSRF middleware
	if h.Config.StorageBackend != "s3" {
		r.Static("/uploads", h.Config.UploadDir)
	}

	r.Use(
		middleware.CSRF(h.Config.SessionSecret, h.Config.SecureCookies, h.Log),
		middleware.LoadUser(h.Gateway),
	)

	// Public routes (no login required)
	r.GET("/", h.Index)
	r.GET("/login", h.GetLogin)
	r.POST("/login", h.PostLogin)
	r.GET("/logout", h.Logout)
	r.GET("/forgot", h.GetForgot)
	r.POST("/forgot", h.PostForgot)
	r.GET("/reset/:token", h.GetReset)
	r.POST("/reset/:token", h.PostReset)
	r.GET("/signup", h.GetSignup)
	r.POST("/signup", h.PostSignup)

	// Upload, viewer and bids work for anonymous callers too
	r.GET("/upload", h.GetUpload)
	r.POST("/home/postUpload", h.PostUpload)
	r.GET("/viewer", h.GetViewer)
	r.GET("/bids", h.GetBids)
	r.POST("/bids", h.PostBids)
	r.POST("/bids/checkout", h.PostChooseBid)
	r.POST("/checkout", h.PostCheckout)
	r.GET("/checkout/postCheckout", h.GetPostCheckout)

	// Protected routes (require a logged in user)
	account := r.Group("/")
	account.Use(middleware.RequireAuthenticated(h.Gateway))
	{
		account.GET("/account", h.GetAccount)
		account.GET("/history", h.GetHistory)
		account.POST("/account/profile", h.PostUpdateProfile)
		account.POST("/account/password", h.PostUpdatePassword)
		account.POST("/account/delete", h.PostDeleteAccount)
	}

	return r
}
