// Package greeting resolves a visitor's IP address to a location and
// current temperature by calling three upstream HTTP providers in
// sequence. The providers are consumed as black boxes; any failure is
// surfaced to the caller unchanged.
package greeting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the upstream provider endpoints and credentials. Base
// URLs are configurable so tests can point at local servers.
type Config struct {
	IPInfoURL   string
	IPInfoToken string
	GeocodeURL  string
	GeocodeKey  string
	WeatherURL  string
	WeatherKey  string
	Timeout     time.Duration
}

// Greeting is the /hello response payload.
type Greeting struct {
	ClientIP string `json:"client_ip"`
	Location string `json:"location"`
	Greeting string `json:"greeting"`
}

// Client calls the geolocation, geocoding, and weather providers.
type Client struct {
	http *http.Client
	cfg  Config
}

// NewClient creates a greeting client with the configured timeout
// applied to each upstream call.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Greet resolves ip to a region and temperature and formats the greeting
// for visitorName.
func (c *Client) Greet(ctx context.Context, ip, visitorName string) (*Greeting, error) {
	lat, lon, err := c.locate(ctx, ip)
	if err != nil {
		return nil, err
	}

	region, err := c.region(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	temp, err := c.temperature(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	return &Greeting{
		ClientIP: ip,
		Location: region,
		Greeting: fmt.Sprintf("Hello, %s!, the temperature is %s degrees Celsius in %s",
			visitorName, strconv.FormatFloat(temp, 'f', -1, 64), region),
	}, nil
}

// locate returns the latitude and longitude for an IP address.
func (c *Client) locate(ctx context.Context, ip string) (string, string, error) {
	u := fmt.Sprintf("%s/%s/geo?token=%s", c.cfg.IPInfoURL, url.PathEscape(ip), url.QueryEscape(c.cfg.IPInfoToken))

	var body struct {
		Loc string `json:"loc"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return "", "", fmt.Errorf("geolocating ip: %w", err)
	}

	lat, lon, ok := strings.Cut(body.Loc, ",")
	if !ok {
		return "", "", fmt.Errorf("geolocating ip: malformed loc %q", body.Loc)
	}
	return lat, lon, nil
}

// region resolves coordinates to a first-level administrative area name.
func (c *Client) region(ctx context.Context, lat, lon string) (string, error) {
	u := fmt.Sprintf("%s/maps/api/geocode/json?latlng=%s,%s&key=%s",
		c.cfg.GeocodeURL, url.QueryEscape(lat), url.QueryEscape(lon), url.QueryEscape(c.cfg.GeocodeKey))

	var body struct {
		Results []struct {
			AddressComponents []struct {
				LongName string   `json:"long_name"`
				Types    []string `json:"types"`
			} `json:"address_components"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return "", fmt.Errorf("resolving region: %w", err)
	}

	for _, result := range body.Results {
		for _, component := range result.AddressComponents {
			for _, t := range component.Types {
				if t == "administrative_area_level_1" {
					return component.LongName, nil
				}
			}
		}
	}
	return "", fmt.Errorf("resolving region: no administrative area in response")
}

// temperature returns the current temperature in degrees Celsius.
func (c *Client) temperature(ctx context.Context, lat, lon string) (float64, error) {
	u := fmt.Sprintf("%s/data/2.5/weather?lat=%s&lon=%s&units=metric&appid=%s",
		c.cfg.WeatherURL, url.QueryEscape(lat), url.QueryEscape(lon), url.QueryEscape(c.cfg.WeatherKey))

	var body struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return 0, fmt.Errorf("fetching weather: %w", err)
	}
	return body.Main.Temp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
