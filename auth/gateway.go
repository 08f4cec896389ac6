// Package auth establishes caller identity: database-backed sessions,
// credential checks, flash messages and password reset tokens.
package auth

import (
	"context"
	"errors"
	"fmt"

	"plasticity-backend/apperr"
	"plasticity-backend/database"
	"plasticity-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// SessionName is the session cookie name.
const SessionName = "plasticity.sid"

// Session keys read by the upload, viewer and bid flows.
const (
	KeyFileName  = "filename"
	KeyFilePath  = "stlfile"
	KeyReturnTo  = "returnTo"
	KeyBidSeller = "bidSeller"
	KeyBidPrice  = "bidPrice"

	keyUserID    = "user_id"
	flashPrefix  = "_flash_"
	contextUser  = "user"
	contextError = "session_error"
)

// Flash kinds rendered by the layout.
const (
	FlashErrors  = "errors"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

var flashKinds = []string{FlashErrors, FlashSuccess, FlashInfo}

// rotator is implemented by stores that can reissue a session id.
type rotator interface {
	Rotate(ctx context.Context, session *sessions.Session) error
}

// Gateway ties a session store to the User Directory.
type Gateway struct {
	store sessions.Store
	users *database.UserDirectory
	log   *logrus.Logger
}

func NewGateway(store sessions.Store, users *database.UserDirectory, log *logrus.Logger) *Gateway {
	return &Gateway{store: store, users: users, log: log}
}

// Session returns the caller's session. A store failure is logged and an
// empty session is used so the request can still be served.
func (g *Gateway) Session(c *gin.Context) *sessions.Session {
	s, err := g.store.Get(c.Request, SessionName)
	if err != nil {
		if _, logged := c.Get(contextError); !logged {
			g.log.WithError(err).Warn("session load failed")
			c.Set(contextError, err)
		}
	}
	return s
}

// Save persists the session and writes its cookie. Call before any redirect
// or render.
func (g *Gateway) Save(c *gin.Context) error {
	return g.Session(c).Save(c.Request, c.Writer)
}

// LoadUser resolves the session's user into the request context. A user id
// whose account is gone is dropped from the session; other lookup failures
// leave it in place.
func (g *Gateway) LoadUser(c *gin.Context) {
	id, ok := g.Session(c).Values[keyUserID].(uint)
	if !ok {
		return
	}
	user, err := g.users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			delete(g.Session(c).Values, keyUserID)
			return
		}
		g.log.WithError(err).Error("load session user")
		return
	}
	c.Set(contextUser, user)
}

// CurrentUser returns the authenticated user or nil.
func (g *Gateway) CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(contextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// Login checks email and password and starts an authenticated session.
// Bad credentials yield apperr.ErrAuthFailure.
func (g *Gateway) Login(c *gin.Context, email, password string) (*models.User, error) {
	user, err := g.users.FindByEmail(c.Request.Context(), email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("login %s: %w", email, apperr.ErrAuthFailure)
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.Password, password) {
		return nil, fmt.Errorf("login %s: %w", email, apperr.ErrAuthFailure)
	}
	g.LogIn(c, user)
	return user, nil
}

// LogIn marks user as the session's identity without checking credentials.
// The session id is reissued on login when the store supports it.
func (g *Gateway) LogIn(c *gin.Context, user *models.User) {
	s := g.Session(c)
	if r, ok := g.store.(rotator); ok {
		if err := r.Rotate(c.Request.Context(), s); err != nil {
			g.log.WithError(err).Warn("rotate session")
		}
	}
	s.Values[keyUserID] = user.ID
	c.Set(contextUser, user)
}

// Logout forgets the identity but keeps the session for flash messages.
func (g *Gateway) Logout(c *gin.Context) {
	delete(g.Session(c).Values, keyUserID)
	c.Set(contextUser, (*models.User)(nil))
}

// Value reads a string from the session.
func (g *Gateway) Value(c *gin.Context, key string) string {
	v, _ := g.Session(c).Values[key].(string)
	return v
}

func (g *Gateway) SetValue(c *gin.Context, key, value string) {
	g.Session(c).Values[key] = value
}

func (g *Gateway) Delete(c *gin.Context, keys ...string) {
	s := g.Session(c)
	for _, k := range keys {
		delete(s.Values, k)
	}
}

// Flash queues messages shown once on the next render.
func (g *Gateway) Flash(c *gin.Context, kind string, messages ...string) {
	s := g.Session(c)
	queued, _ := s.Values[flashPrefix+kind].([]string)
	s.Values[flashPrefix+kind] = append(queued, messages...)
}

// Flashes drains the queued messages by kind.
func (g *Gateway) Flashes(c *gin.Context) map[string][]string {
	s := g.Session(c)
	out := make(map[string][]string)
	for _, kind := range flashKinds {
		if queued, ok := s.Values[flashPrefix+kind].([]string); ok && len(queued) > 0 {
			out[kind] = queued
		}
		delete(s.Values, flashPrefix+kind)
	}
	return out
}

// HashPassword hashes a plain password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
