package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
	"golang.org/x/time/rate"
)

const (
	defaultRatePerSec = 5
	defaultBurst      = 2

	maxRetries    = 3
	baseRetryWait = 250 * time.Millisecond
)

// Client consulta un feed de precios HTTP con rate limiting y retries.
//
//	GET {base}/price?feed={ref}  →  {"feed":"BTCUSD","price":"64123"}
//
// El precio viaja como string decimal sin signo para no perder precisión.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client contra base. ratePerSec <= 0 usa el default.
func NewClient(base string, ratePerSec float64) *Client {
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), defaultBurst),
	}
}

type priceResponse struct {
	Feed  string `json:"feed"`
	Price string `json:"price"`
}

// Price implementa ports.PriceOracle.
func (c *Client) Price(ctx context.Context, ref string) (domain.Amount, error) {
	u := fmt.Sprintf("%s/price?feed=%s", c.base, url.QueryEscape(ref))

	var resp priceResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return domain.Amount{}, fmt.Errorf("oracle.Price %s: %w", ref, err)
	}
	if resp.Price == "" {
		return domain.Amount{}, fmt.Errorf("oracle.Price %s: empty price", ref)
	}
	price, err := domain.ParseAmount(resp.Price)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("oracle.Price %s: %w", ref, err)
	}
	return price, nil
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server status %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("price feed unavailable, retrying", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

var _ ports.PriceOracle = (*Client)(nil)
