package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrRateUnavailable reports that the live exchange-rate source could not
// be reached or returned garbage. Callers recover by falling back to a
// configured default rate; FallbackSource does this automatically.
var ErrRateUnavailable = errors.New("exchange rate source unavailable")

// DefaultFallbackRate is the documented BRL/USD rate used whenever the
// live source is unavailable and no override is configured.
var DefaultFallbackRate = decimal.RequireFromString("5.42")

// RateSource supplies an exchange rate from one currency to another.
type RateSource interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// StaticSource always returns the same rate. Used for tests and for
// annual reports, which apply one rate uniformly.
type StaticSource struct {
	Rate decimal.Decimal
}

func (s StaticSource) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return s.Rate, nil
}

// HTTPSource fetches rates from an external HTTP endpoint returning
// {"rate": "5.1234"}. Concurrent lookups for the same pair collapse into
// a single upstream call.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client

	group singleflight.Group
}

// NewHTTPSource creates a rate source against the given base URL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPSource) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := from + "/" + to
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, from, to)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return v.(decimal.Decimal), nil
}

func (s *HTTPSource) fetch(ctx context.Context, from, to string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s?from=%s&to=%s", s.BaseURL, url.QueryEscape(from), url.QueryEscape(to))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	}

	var body struct {
		Rate string `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode response: %v", ErrRateUnavailable, err)
	}

	rate, err := decimal.NewFromString(body.Rate)
	if err != nil || rate.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: bad rate %q", ErrRateUnavailable, body.Rate)
	}
	return rate, nil
}

// FallbackSource wraps a live source and degrades to a configured rate
// when the source is unavailable. The fallback is the only sanctioned
// local recovery in the error policy; every use of it is logged.
type FallbackSource struct {
	Source   RateSource
	Fallback decimal.Decimal
}

// NewFallbackSource wraps source with the given fallback rate. A zero
// fallback selects DefaultFallbackRate.
func NewFallbackSource(source RateSource, fallback decimal.Decimal) *FallbackSource {
	if fallback.Sign() <= 0 {
		fallback = DefaultFallbackRate
	}
	return &FallbackSource{Source: source, Fallback: fallback}
}

func (f *FallbackSource) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if f.Source == nil {
		return f.Fallback, nil
	}
	rate, err := f.Source.GetRate(ctx, from, to)
	if err != nil {
		if !errors.Is(err, ErrRateUnavailable) {
			return decimal.Decimal{}, err
		}
		slog.WarnContext(ctx, "Exchange rate source unavailable, using fallback rate",
			"from", from,
			"to", to,
			"fallback_rate", f.Fallback.String(),
			"error", err)
		return f.Fallback, nil
	}
	return rate, nil
}
