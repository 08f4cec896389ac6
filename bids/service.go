// Package bids builds the priced seller listing shown on the bids page.
package bids

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"plasticity-backend/apperr"
	"plasticity-backend/database"
	"plasticity-backend/models"
	"plasticity-backend/pricing"

	"github.com/sirupsen/logrus"
)

// PlaceholderFileID is the identifier the bids page prices against.
// The listing is not yet tied to the caller's upload.
const PlaceholderFileID = "req.filename"

// Catalog supplies the candidate sellers for a listing.
type Catalog interface {
	Sellers(ctx context.Context) ([]models.Seller, error)
}

// FileCatalog reads candidates from a JSON array on disk.
type FileCatalog struct {
	Path string
}

func (c FileCatalog) Sellers(ctx context.Context) ([]models.Seller, error) {
	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("read sellers: %w: %w", apperr.ErrDataUnavailable, err)
	}
	var sellers []models.Seller
	if err := json.Unmarshal(raw, &sellers); err != nil {
		return nil, fmt.Errorf("decode sellers: %w: %w", apperr.ErrDataUnavailable, err)
	}
	return sellers, nil
}

// DirectoryCatalog offers every seller account from the User Directory.
type DirectoryCatalog struct {
	Users *database.UserDirectory
}

func (c DirectoryCatalog) Sellers(ctx context.Context) ([]models.Seller, error) {
	users, err := c.Users.ListSellers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w: %w", apperr.ErrDataUnavailable, err)
	}
	sellers := make([]models.Seller, 0, len(users))
	for _, u := range users {
		name := u.Profile.Name
		if name == "" {
			name = u.Email
		}
		sellers = append(sellers, models.Seller{
			Name:         name,
			Email:        u.Email,
			Location:     u.Profile.Location,
			PrinterModel: u.Printer.Model,
			Multiplier:   u.Multiplier,
		})
	}
	return sellers, nil
}

// Service prices a catalog with a Resolver.
type Service struct {
	catalog  Catalog
	resolver pricing.Resolver
	log      *logrus.Logger
}

func NewService(catalog Catalog, resolver pricing.Resolver, log *logrus.Logger) *Service {
	return &Service{catalog: catalog, resolver: resolver, log: log}
}

// List returns every candidate with its quote for fileID. The price is
// resolved once for the whole listing. Any failure returns no bids.
func (s *Service) List(ctx context.Context, fileID string) ([]models.Bid, error) {
	sellers, err := s.catalog.Sellers(ctx)
	if err != nil {
		return nil, err
	}

	price, err := s.resolver.Resolve(ctx, fileID)
	if err != nil {
		return nil, err
	}

	bids := make([]models.Bid, 0, len(sellers))
	for _, seller := range sellers {
		if seller.Multiplier < 0 {
			return nil, fmt.Errorf("seller %q: %w: negative multiplier", seller.Name, apperr.ErrDataUnavailable)
		}
		bids = append(bids, models.Bid{Seller: seller, Price: pricing.FormatQuote(seller.Multiplier, price)})
	}

	s.log.WithFields(logrus.Fields{"file": fileID, "price": price, "bids": len(bids)}).Debug("priced listing")
	return bids, nil
}

// Quote prices a single seller for fileID. sellerKey is the seller's Key.
func (s *Service) Quote(ctx context.Context, fileID, sellerKey string) (models.Bid, error) {
	bids, err := s.List(ctx, fileID)
	if err != nil {
		return models.Bid{}, err
	}
	for _, b := range bids {
		if b.Key() == sellerKey {
			return b, nil
		}
	}
	return models.Bid{}, fmt.Errorf("quote seller %q: %w", sellerKey, apperr.ErrNotFound)
}
