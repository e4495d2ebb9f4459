package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"PriceBoard/internal/calculator"
	"PriceBoard/internal/model"
)

// StatusError is returned for a non-2xx response from the price source.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("price source: status %d, body: %s", e.StatusCode, e.Body)
}

// SourceFetcher implements Fetcher over the price source's HTTP/JSON API.
type SourceFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewSourceFetcher creates a new fetcher with optional proxy support.
func NewSourceFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *SourceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &SourceFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *SourceFetcher) Name() string { return "http" }

// sourcePoint is the JSON shape of one series entry.
type sourcePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// FetchSnapshot reads GET /snapshot. The JSON object's key order is kept.
func (f *SourceFetcher) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	body, err := f.get(ctx, "/snapshot")
	if err != nil {
		return model.Snapshot{}, err
	}
	snap, err := decodeOrderedPrices(body)
	if err != nil {
		return model.Snapshot{}, errors.Wrap(err, "decode snapshot")
	}
	return snap, nil
}

// FetchSeries reads GET /series/{symbol} and derives each point's direction.
func (f *SourceFetcher) FetchSeries(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	body, err := f.get(ctx, "/series/"+url.PathEscape(symbol))
	if err != nil {
		return nil, err
	}
	var raw []sourcePoint
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrapf(err, "decode series %s", symbol)
	}
	points := make([]model.PricePoint, len(raw))
	for i, p := range raw {
		points[i] = model.PricePoint{Time: p.Timestamp, Price: p.Price, Direction: model.Flat}
		if i > 0 {
			points[i].Direction = calculator.Compare(raw[i-1].Price, p.Price)
		}
	}
	return points, nil
}

// FetchLedger reads GET /ledger, newest first.
func (f *SourceFetcher) FetchLedger(ctx context.Context) ([]model.TransactionRecord, error) {
	body, err := f.get(ctx, "/ledger")
	if err != nil {
		return nil, err
	}
	var records []model.TransactionRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Wrap(err, "decode ledger")
	}
	return records, nil
}

func (f *SourceFetcher) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// decodeOrderedPrices decodes a JSON object of symbol -> price, keeping the
// order in which keys appear.
func decodeOrderedPrices(body []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return snap, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return snap, errors.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return snap, err
		}
		symbol, ok := tok.(string)
		if !ok {
			return snap, errors.Errorf("expected symbol key, got %v", tok)
		}
		var price float64
		if err := dec.Decode(&price); err != nil {
			return snap, errors.Wrapf(err, "price for %s", symbol)
		}
		snap.Set(symbol, price)
	}
	if _, err := dec.Token(); err != nil {
		return snap, err
	}
	return snap, nil
}
