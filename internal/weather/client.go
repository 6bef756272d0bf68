// Package weather fetches an ambient weather readout from wttr.in.
// The upstream is best effort: every failure is returned as an error for the
// caller to render, never propagated as a transport fault.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultURL is the wttr.in JSON endpoint.
const DefaultURL = "https://wttr.in/?format=j1"

// DefaultTimeout bounds the upstream call.
const DefaultTimeout = 5 * time.Second

// Report is the readout served to clients.
type Report struct {
	TempC       string `json:"temp_C"`
	Description string `json:"weatherDesc"`
	TimeOfDay   string `json:"time_of_day"`
}

// Client fetches weather reports.
type Client struct {
	url   string
	http  *http.Client
	clock func() time.Time
}

// NewClient returns a client for the given endpoint. Empty url and zero
// timeout fall back to the defaults; a nil clock to time.Now.
func NewClient(url string, timeout time.Duration, clock func() time.Time) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if clock == nil {
		clock = time.Now
	}
	return &Client{
		url:   url,
		http:  &http.Client{Timeout: timeout},
		clock: clock,
	}
}

// wttr.in j1 format, reduced to the fields we serve.
type upstreamPayload struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// Current fetches the current conditions and tags them with day/night based
// on the local hour.
func (c *Client) Current(ctx context.Context) (Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Report{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("weather upstream returned %s", resp.Status)
	}

	var payload upstreamPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Report{}, fmt.Errorf("decode weather payload: %w", err)
	}
	if len(payload.CurrentCondition) == 0 || len(payload.CurrentCondition[0].WeatherDesc) == 0 {
		return Report{}, fmt.Errorf("weather payload missing current conditions")
	}

	current := payload.CurrentCondition[0]
	return Report{
		TempC:       current.TempC,
		Description: current.WeatherDesc[0].Value,
		TimeOfDay:   timeOfDay(c.clock().Hour()),
	}, nil
}

func timeOfDay(hour int) string {
	if hour < 6 || hour > 20 {
		return "night"
	}
	return "day"
}
