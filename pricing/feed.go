package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"plasticity-backend/apperr"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// Feed asks an external XML price service for the base price of a file.
//
// The service is called as GET <url>?file=<id> and answers with
//
//	<quote><file>part.stl</file><price>12.50</price></quote>
type Feed struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewFeed initializes a feed client with a 10 second timeout
func NewFeed(feedURL string, log *logrus.Logger) *Feed {
	return &Feed{
		url: feedURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (f *Feed) Resolve(ctx context.Context, fileID string) (float64, error) {
	if strings.TrimSpace(fileID) == "" {
		return 0, fmt.Errorf("resolve price: %w: empty file identifier", apperr.ErrPricing)
	}

	body, err := f.fetch(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("resolve price for %q: %w: %w", fileID, apperr.ErrPricing, err)
	}

	price, err := parseQuote(body)
	if err != nil {
		return 0, fmt.Errorf("resolve price for %q: %w: %w", fileID, apperr.ErrPricing, err)
	}

	f.log.WithFields(logrus.Fields{"file": fileID, "price": price}).Debug("resolved price from feed")
	return price, nil
}

func (f *Feed) fetch(ctx context.Context, fileID string) ([]byte, error) {
	u, err := url.Parse(f.url)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %v", err)
	}
	q := u.Query()
	q.Set("file", fileID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	return body, nil
}

func parseQuote(raw []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	el := doc.FindElement("//quote/price")
	if el == nil {
		return 0, fmt.Errorf("price element not found in XML")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(el.Text()), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price: %v", err)
	}
	if err := checkPrice(price); err != nil {
		return 0, err
	}
	return price, nil
}
