// Package geocode resolves coordinates picked in the listing wizard into
// address parts using a Nominatim-compatible reverse geocoding service.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/homestay/homestay-client/internal/pkg/metrics"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

var (
	ErrInvalidCoordinates = errors.New("geocode: invalid coordinates")
	ErrNotFound           = errors.New("geocode: no address at location")
	ErrRateLimited        = errors.New("geocode: rate limited")
)

// Address is the subset of a reverse-geocoding answer a listing needs.
type Address struct {
	DisplayName string  `json:"display_name"`
	Road        string  `json:"road,omitempty"`
	HouseNumber string  `json:"house_number,omitempty"`
	Suburb      string  `json:"suburb,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Postcode    string  `json:"postcode,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type Client struct {
	base string
	hc   *http.Client
	ua   string
	lang string
	rl   *rate.Limiter
}

// New creates a client limited to rps requests per second (1 when rps <= 0).
func New(base, userAgent, lang string, rps float64) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 1
	}
	if userAgent == "" {
		userAgent = "homestay-client/1.0"
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		ua:   userAgent,
		lang: lang,
		rl:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type reverseResponse struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// Reverse looks up the address at lat/lon.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.ObserveAPI(http.MethodGet, "geocode:reverse", 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveAPI(http.MethodGet, "geocode:reverse", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("geocode: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("geocode: decode: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, out.Error)
	}
	return toAddress(out, lat, lon), nil
}

func toAddress(r reverseResponse, lat, lon float64) *Address {
	a := &Address{
		DisplayName: r.DisplayName,
		Road:        r.Address["road"],
		HouseNumber: r.Address["house_number"],
		Suburb:      first(r.Address, "suburb", "neighbourhood", "quarter"),
		City:        first(r.Address, "city", "town", "village", "hamlet", "municipality"),
		State:       first(r.Address, "state", "region", "county"),
		Postcode:    r.Address["postcode"],
		Country:     r.Address["country"],
		CountryCode: strings.ToUpper(r.Address["country_code"]),
		Lat:         lat,
		Lon:         lon,
	}
	if v, err := strconv.ParseFloat(r.Lat, 64); err == nil {
		a.Lat = v
	}
	if v, err := strconv.ParseFloat(r.Lon, 64); err == nil {
		a.Lon = v
	}
	return a
}

func first(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
