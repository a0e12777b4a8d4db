// Package twelvedata implements the market-data boundary: per-timeframe OHLCV
// series plus the current traded price. Series are validated here, before the
// analysis core ever sees them.
package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	platform "github.com/Alias1177/IndexSignal/internal/platform/http"
	"github.com/Alias1177/IndexSignal/models"
)

const baseURL = "https://api.twelvedata.com"

// intervals maps timeframe identifiers to feed intervals. The feed has no
// 3-minute resolution; 1-minute is the closest faster one.
var intervals = map[models.Timeframe]string{
	models.TimeframeMonthly: "1month",
	models.TimeframeWeekly:  "1week",
	models.TimeframeDaily:   "1day",
	models.Timeframe4H:      "4h",
	models.Timeframe1H:      "1h",
	models.Timeframe15M:     "15min",
	models.Timeframe5M:      "5min",
	models.Timeframe3M:      "1min",
}

// timeSeriesResponse is the feed's time_series payload.
type timeSeriesResponse struct {
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

// Client fetches candles and quotes for one symbol.
type Client struct {
	http   *platform.Client
	apiKey string
	symbol string
	logger zerolog.Logger
}

// NewClient creates a market data client for the given symbol.
func NewClient(apiKey, symbol string) *Client {
	return &Client{
		http:   platform.NewClient(platform.ClientOptions{}),
		apiKey: apiKey,
		symbol: symbol,
		logger: log.With().Str("component", "twelvedata").Str("symbol", symbol).Logger(),
	}
}

// GetCandles fetches one timeframe's series, oldest bar first.
func (c *Client) GetCandles(ctx context.Context, tf models.Timeframe, count int) ([]models.Candle, error) {
	interval, ok := intervals[tf]
	if !ok {
		return nil, fmt.Errorf("unknown timeframe %q", tf)
	}

	url := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&outputsize=%d&apikey=%s",
		baseURL, c.symbol, interval, count, c.apiKey)

	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing time series: %w", err)
	}
	if len(data.Values) == 0 {
		return nil, fmt.Errorf("empty series for timeframe %s", tf)
	}

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("timeframe %s: %w", tf, err)
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      v.Open,
			High:      v.High,
			Low:       v.Low,
			Close:     v.Close,
			Volume:    v.Volume,
		})
	}

	// Oldest first for proper calculations.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	if err := models.ValidateSeries(tf, candles); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("timeframe", string(tf)).Int("count", len(candles)).Msg("fetched candles")
	return candles, nil
}

// GetQuote fetches the current traded price.
func (c *Client) GetQuote(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/price?symbol=%s&apikey=%s", baseURL, c.symbol, c.apiKey)

	body, err := c.fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	var data struct {
		Price float64 `json:"price,string"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, fmt.Errorf("parsing quote: %w", err)
	}
	if data.Price == 0 {
		return 0, fmt.Errorf("empty quote for %s", c.symbol)
	}
	return data.Price, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if strings.Contains(string(body), `"status":"error"`) {
		c.logger.Error().Str("response", string(body)).Msg("feed returned error status")
		return nil, fmt.Errorf("feed error: %s", string(body))
	}
	return body, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}
