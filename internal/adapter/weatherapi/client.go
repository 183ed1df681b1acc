// Package weatherapi fetches current conditions and the short-range forecast
// from weatherapi.com for the town dashboards.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oancholarevelo/floodtrack/internal/domain"
)

// Current is the present weather at a point.
type Current struct {
	TempC        float64 `json:"tempC"`
	Condition    string  `json:"condition"`
	Icon         string  `json:"icon"`
	Humidity     int     `json:"humidity"`
	WindKph      float64 `json:"windKph"`
	PrecipMM     float64 `json:"precipMm"`
	ChanceOfRain int     `json:"chanceOfRain"`
}

// Day is one forecast day.
type Day struct {
	Date         string  `json:"date"`
	MaxTempC     float64 `json:"maxTempC"`
	MinTempC     float64 `json:"minTempC"`
	ChanceOfRain int     `json:"chanceOfRain"`
	Condition    string  `json:"condition"`
	Icon         string  `json:"icon"`
}

// Report is the weather block shown on a town page.
type Report struct {
	Current Current `json:"current"`
	Days    []Day   `json:"days"`
}

// Client talks to the weatherapi.com forecast endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a weatherapi.com client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		logger:  logger,
	}
}

// Forecast fetches current conditions plus up to days forecast days for the
// given point.
func (c *Client) Forecast(ctx context.Context, loc domain.GeoPoint, days int) (Report, error) {
	params := url.Values{
		"key":  {c.apiKey},
		"q":    {fmt.Sprintf("%.4f,%.4f", loc.Latitude, loc.Longitude)},
		"days": {strconv.Itoa(days)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Report{}, fmt.Errorf("weatherapi error: status %d: %s", resp.StatusCode, body)
	}

	var wr response
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return Report{}, fmt.Errorf("decode response: %w", err)
	}

	report := Report{
		Current: Current{
			TempC:     wr.Current.TempC,
			Condition: wr.Current.Condition.Text,
			Icon:      wr.Current.Condition.Icon,
			Humidity:  wr.Current.Humidity,
			WindKph:   wr.Current.WindKph,
			PrecipMM:  wr.Current.PrecipMM,
		},
	}

	for i, d := range wr.Forecast.ForecastDay {
		if i == 0 {
			report.Current.ChanceOfRain = d.Day.DailyChanceOfRain
		}
		report.Days = append(report.Days, Day{
			Date:         d.Date,
			MaxTempC:     d.Day.MaxTempC,
			MinTempC:     d.Day.MinTempC,
			ChanceOfRain: d.Day.DailyChanceOfRain,
			Condition:    d.Day.Condition.Text,
			Icon:         d.Day.Condition.Icon,
		})
	}

	return report, nil
}

// weatherapi.com response types.

type response struct {
	Current  current  `json:"current"`
	Forecast forecast `json:"forecast"`
}

type current struct {
	TempC     float64   `json:"temp_c"`
	Humidity  int       `json:"humidity"`
	WindKph   float64   `json:"wind_kph"`
	PrecipMM  float64   `json:"precip_mm"`
	Condition condition `json:"condition"`
}

type condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type forecast struct {
	ForecastDay []forecastDay `json:"forecastday"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  day    `json:"day"`
}

type day struct {
	MaxTempC          float64   `json:"maxtemp_c"`
	MinTempC          float64   `json:"mintemp_c"`
	DailyChanceOfRain int       `json:"daily_chance_of_rain"`
	Condition         condition `json:"condition"`
}
