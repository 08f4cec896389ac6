package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"plasticity-backend/apperr"
	"plasticity-backend/models"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loadFailed marks a session whose row exists but could not be read.
// Saving it would overwrite the stored values with an empty map.
type loadFailed struct{}

// DBStore is a gorilla/sessions Store that keeps session values in the
// sessions table. The cookie only carries the signed session id.
type DBStore struct {
	db      *gorm.DB
	Codecs  []securecookie.Codec
	Options *sessions.Options
}

// NewDBStore signs session ids with keyPairs, as sessions.NewCookieStore does.
func NewDBStore(db *gorm.DB, maxAge int, keyPairs ...[]byte) *DBStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxLength(0) // Values live in the database, not the cookie
			sc.MaxAge(maxAge)
		}
	}
	return &DBStore{
		db:     db,
		Codecs: codecs,
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Get returns the session cached for this request, loading it on first use.
func (s *DBStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, forged or
// expired session yields a fresh one.
func (s *DBStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, nil
	}
	if err := s.load(r.Context(), session); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			session.ID = ""
			return session, nil
		}
		session.Values[loadFailed{}] = true
		return session, err
	}
	session.IsNew = false
	return session, nil
}

// Save writes the values and refreshes the cookie. A negative MaxAge
// deletes the row and expires the cookie. A session that failed to load is
// never written back.
func (s *DBStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if _, failed := session.Values[loadFailed{}]; failed {
		return fmt.Errorf("save session: %w: session was not loaded", apperr.ErrPersistence)
	}
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.db.WithContext(r.Context()).Delete(&models.Session{ID: session.ID}).Error; err != nil {
				return fmt.Errorf("delete session: %w: %w", apperr.ErrPersistence, err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.save(r.Context(), session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Rotate drops the stored row of session and clears its id, so the next
// Save issues a new id carrying the same values.
func (s *DBStore) Rotate(ctx context.Context, session *sessions.Session) error {
	old := session.ID
	session.ID = ""
	delete(session.Values, loadFailed{}) // A new row cannot clobber the unread one
	if old == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&models.Session{ID: old}).Error; err != nil {
		return fmt.Errorf("rotate session: %w: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// PurgeExpired removes sessions that expired before now.
func (s *DBStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w: %w", apperr.ErrPersistence, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *DBStore) load(ctx context.Context, session *sessions.Session) error {
	var row models.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", session.ID, time.Now().UTC()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load session: %w: %w", apperr.ErrPersistence, err)
	}
	if err := securecookie.DecodeMulti(session.Name(), row.Data, &session.Values, s.Codecs...); err != nil {
		return apperr.ErrNotFound // Stale encoding or rotated keys
	}
	return nil
}

func (s *DBStore) save(ctx context.Context, session *sessions.Session) error {
	encoded, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	row := models.Session{
		ID:        session.ID,
		Data:      encoded,
		ExpiresAt: time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second).UTC(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save session: %w: %w", apperr.ErrPersistence, err)
	}
	return nil
}
