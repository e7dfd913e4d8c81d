// package weather fetches geocoding and forecast data from the
// OpenWeather API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/wxfm/internal/models"
	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/sony/gobreaker"
)

const openWeatherBaseURL = "https://api.openweathermap.org"

const (
	defaultMaxRetries  = 3
	initialRetryDelay  = 500 * time.Millisecond
	maxRetryDelay      = 5 * time.Second
	defaultHTTPTimeout = 20 * time.Second
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
)

// Client talks to the OpenWeather geocoding and 5-day forecast
// endpoints. Calls run behind a circuit breaker with bounded
// exponential backoff: connection errors, 429s, and 5xx responses are
// retried, other error statuses fail immediately.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	retryBase  time.Duration
	retryCap   time.Duration
}

// NewClient creates an OpenWeather client with the default resilience
// policy.
func NewClient(apiKey string) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:     apiKey,
		baseURL:    openWeatherBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		breaker:    breaker,
		maxRetries: defaultMaxRetries,
		retryBase:  initialRetryDelay,
		retryCap:   maxRetryDelay,
	}
}

// Location is a geocoded place.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Geocode resolves a city query such as "Dublin,IE" to coordinates
// using the first direct-geocoding match.
func (c *Client) Geocode(ctx context.Context, city string) (*Location, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key", shared.ErrMissingCredentials)
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("limit", "1")
	query.Set("appid", c.apiKey)

	var locations []Location
	if err := c.getJSON(ctx, "geocode", "/geo/1.0/direct?"+query.Encode(), &locations); err != nil {
		return nil, err
	}

	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: city not found: %s", shared.ErrInvalidArgument, city)
	}

	return &locations[0], nil
}

// forecastPayload mirrors the 5-day/3-hour forecast response.
type forecastPayload struct {
	List []forecastEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"` // shift from UTC in seconds
	} `json:"city"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// TomorrowForecast geocodes the city and returns the 3-hour forecast
// slot closest to noon tomorrow, where "tomorrow" and "noon" are both
// evaluated in the city's own timezone as reported by the API.
func (c *Client) TomorrowForecast(ctx context.Context, city string) (*models.Forecast, error) {
	location, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(location.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(location.Lon, 'f', -1, 64))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	var payload forecastPayload
	if err := c.getJSON(ctx, "forecast", "/data/2.5/forecast?"+query.Encode(), &payload); err != nil {
		return nil, err
	}

	tz := time.FixedZone("city", payload.City.Timezone)
	tomorrow := time.Now().In(tz).AddDate(0, 0, 1)
	target := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 12, 0, 0, 0, tz)

	var chosen *forecastEntry
	var chosenAt time.Time
	var best time.Duration
	for i := range payload.List {
		at := time.Unix(payload.List[i].Dt, 0).In(tz)
		if at.Year() != target.Year() || at.YearDay() != target.YearDay() {
			continue
		}

		diff := at.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if chosen == nil || diff < best {
			chosen = &payload.List[i]
			chosenAt = at
			best = diff
		}
	}

	if chosen == nil {
		return nil, fmt.Errorf("%w: no entries for %s", shared.ErrNoForecast, target.Format("2006-01-02"))
	}

	condition := "Clear"
	if len(chosen.Weather) > 0 && chosen.Weather[0].Main != "" {
		condition = chosen.Weather[0].Main
	}

	return &models.Forecast{
		City:      city,
		Condition: condition,
		TempC:     chosen.Main.Temp,
		At:        chosenAt,
	}, nil
}

// getJSON performs a GET under the resilience policy and decodes the
// response body into out.
func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	resp, err := c.doRequest(ctx, op, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode openweather %s response: %w", op, err)
	}

	return nil
}

// doRequest issues the request through the circuit breaker, retrying
// transient failures with exponential backoff. The op label keeps the
// API key out of error messages.
func (c *Client) doRequest(ctx context.Context, op, endpoint string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := c.breaker.Execute(func() (any, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create %s request: %w", op, err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				drain(resp)
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				drain(resp)
				return nil, fmt.Errorf("%w: status %d", errServerError, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				resp.Body.Close()
				return nil, fmt.Errorf("%w: openweather %s: status %d: %s", shared.ErrAPIRequest, op, resp.StatusCode, body)
			}

			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: openweather circuit open: %v", shared.ErrServiceUnavailable, err)
		}
		if errors.Is(err, shared.ErrAPIRequest) {
			return nil, err
		}

		lastErr = err
		if attempt < c.maxRetries {
			if err := sleepWithContext(ctx, c.retryDelay(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: openweather %s failed after %d attempts: %v", shared.ErrAPIRequest, op, c.maxRetries+1, lastErr)
}

// retryDelay doubles the base delay per attempt up to the cap.
func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.retryBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.retryCap {
			return c.retryCap
		}
	}

	return delay
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
