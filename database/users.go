// users.go - User Directory: account records and their history

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plasticity-backend/apperr"
	"plasticity-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserDirectory owns every User record.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// Create inserts a new account. A taken email yields apperr.ErrDuplicateEmail
// and no record is written.
func (d *UserDirectory) Create(ctx context.Context, user *models.User) error {
	if _, err := d.FindByEmail(ctx, user.Email); err == nil {
		return fmt.Errorf("create user: %w", apperr.ErrDuplicateEmail)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) { // Lost a race with a concurrent signup
			return fmt.Errorf("create user: %w", apperr.ErrDuplicateEmail)
		}
		return fmt.Errorf("create user: %w: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// FindByID loads a user together with its ordered upload history.
func (d *UserDirectory) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Preload("UploadedFiles", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&user, id).Error
	if err != nil {
		return nil, lookupError("find user", err)
	}
	return &user, nil
}

func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, lookupError("find user by email", err)
	}
	return &user, nil
}

// FindByResetToken returns the user holding token if it has not expired at now.
// Unknown and expired tokens both yield apperr.ErrNotFoundOrExpired.
func (d *UserDirectory) FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("find user by reset token: %w", apperr.ErrNotFoundOrExpired)
	}
	var user models.User
	err := d.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expires > ?", token, now.UTC()).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user by reset token: %w", apperr.ErrNotFoundOrExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by reset token: %w: %w", apperr.ErrPersistence, err)
	}
	return &user, nil
}

// UpdateProfile saves email, name and location. Moving onto another
// account's email yields apperr.ErrDuplicateEmail.
func (d *UserDirectory) UpdateProfile(ctx context.Context, id uint, email string, profile models.Profile) error {
	if other, err := d.FindByEmail(ctx, email); err == nil && other.ID != id {
		return fmt.Errorf("update profile: %w", apperr.ErrDuplicateEmail)
	}
	return d.update(ctx, "update profile", id, map[string]interface{}{
		"email":            email,
		"profile_name":     profile.Name,
		"profile_location": profile.Location,
	})
}

// UpdatePrinter saves seller printer capabilities and the quoting multiplier.
func (d *UserDirectory) UpdatePrinter(ctx context.Context, id uint, printer models.Printer, multiplier float64) error {
	if multiplier < 0 {
		return fmt.Errorf("update printer: %w: negative multiplier", apperr.ErrValidation)
	}
	return d.update(ctx, "update printer", id, map[string]interface{}{
		"printer_model":              printer.Model,
		"printer_supports_abs":       printer.SupportsABS,
		"printer_supports_pla":       printer.SupportsPLA,
		"printer_highest_resolution": printer.HighestResolution,
		"printer_example_prints":     printer.ExamplePrints,
		"multiplier":                 multiplier,
	})
}

// UpdatePassword stores an already hashed password and clears any reset token.
func (d *UserDirectory) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return d.update(ctx, "update password", id, map[string]interface{}{
		"password":               hash,
		"reset_password_token":   "",
		"reset_password_expires": nil,
	})
}

func (d *UserDirectory) SetResetToken(ctx context.Context, id uint, token string, expires time.Time) error {
	return d.update(ctx, "set reset token", id, map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expires.UTC(),
	})
}

// ClearExpiredResetTokens drops tokens that expired before now and reports how many.
func (d *UserDirectory) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Model(&models.User{}).
		Where("reset_password_token <> '' AND reset_password_expires <= ?", now.UTC()).
		Updates(map[string]interface{}{"reset_password_token": "", "reset_password_expires": nil})
	if res.Error != nil {
		return 0, fmt.Errorf("clear reset tokens: %w: %w", apperr.ErrPersistence, res.Error)
	}
	return res.RowsAffected, nil
}

// AppendHistory adds file to the end of the user's upload history.
func (d *UserDirectory) AppendHistory(ctx context.Context, id uint, file *models.UploadedFile) error {
	user, err := d.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := d.db.WithContext(ctx).Model(user).Association("UploadedFiles").Append(file); err != nil {
		return fmt.Errorf("append history: %w: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// ListSellers returns every account flagged as a seller.
func (d *UserDirectory) ListSellers(ctx context.Context) ([]models.User, error) {
	var sellers []models.User
	if err := d.db.WithContext(ctx).Where("is_seller = ?", true).Order("id ASC").Find(&sellers).Error; err != nil {
		return nil, fmt.Errorf("list sellers: %w: %w", apperr.ErrPersistence, err)
	}
	return sellers, nil
}

// Delete removes the account and its history.
func (d *UserDirectory) Delete(ctx context.Context, id uint) error {
	res := d.db.WithContext(ctx).Select(clause.Associations).Delete(&models.User{ID: id})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w: %w", apperr.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete user: %w", apperr.ErrNotFound)
	}
	return nil
}

func (d *UserDirectory) update(ctx context.Context, op string, id uint, fields map[string]interface{}) error {
	res := d.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s: %w", op, apperr.ErrDuplicateEmail)
		}
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

func lookupError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrPersistence, err)
}
