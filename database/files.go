// files.go - File Store: upload metadata and history association

package database

import (
	"context"
	"fmt"
	"time"

	"plasticity-backend/apperr"
	"plasticity-backend/models"
)

// FileStore records uploaded artifacts. Entries live in a user's history,
// so persisting one goes through the User Directory.
type FileStore struct {
	users *UserDirectory
}

func NewFileStore(users *UserDirectory) *FileStore {
	return &FileStore{users: users}
}

// Entry builds the metadata record for a file stored at location.
func (s *FileStore) Entry(name, location string) models.UploadedFile {
	return models.UploadedFile{
		FileName:  name,
		Location:  location,
		CreatedAt: time.Now(),
	}
}

// Attach appends file to the history of userID.
func (s *FileStore) Attach(ctx context.Context, userID uint, file *models.UploadedFile) error {
	if file.FileName == "" || file.Location == "" {
		return fmt.Errorf("attach file: %w: empty name or location", apperr.ErrValidation)
	}
	return s.users.AppendHistory(ctx, userID, file)
}

// History returns the uploads of userID, oldest first.
func (s *FileStore) History(ctx context.Context, userID uint) ([]models.UploadedFile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.UploadedFiles, nil
}
