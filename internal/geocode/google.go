package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// GoogleBaseURL is the Google Geocoding API JSON endpoint.
const GoogleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Google status values, see the Geocoding API response reference.
const (
	googleStatusOK             = "OK"
	googleStatusZeroResults    = "ZERO_RESULTS"
	googleStatusInvalidRequest = "INVALID_REQUEST"
)

// Google resolves addresses with the Google Geocoding API.
type Google struct {
	client  *http.Client
	apiKey  string
	baseURL string
	country string
}

// NewGoogle creates a Google resolver. An empty apiKey leaves the resolver
// uninitialized: every call fails with ErrResolverUnavailable.
func NewGoogle(client *http.Client, apiKey, baseURL, country string) *Google {
	if baseURL == "" {
		baseURL = GoogleBaseURL
	}
	return &Google{
		client:  client,
		apiKey:  apiKey,
		baseURL: baseURL,
		country: country,
	}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve looks up addr and returns the first candidate's location.
func (g *Google) Resolve(ctx context.Context, addr model.Address) (pt model.Point, err error) {
	ctx, span := startSpan(ctx, ProviderGoogle)
	defer func() { endSpan(span, err) }()

	if g.apiKey == "" {
		return model.Point{}, fmt.Errorf("%w: google api key not configured", ErrResolverUnavailable)
	}
	if !complete(addr) {
		return model.Point{}, fmt.Errorf("%w: incomplete address", ErrAddressNotFound)
	}

	q := url.Values{}
	q.Set("address", FormatAddress(addr, g.country))
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return model.Point{}, fmt.Errorf("%w: build request: %w", ErrResolverUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	var body googleResponse
	if err := getJSON(ctx, g.client, req, &body); err != nil {
		return model.Point{}, err
	}

	switch body.Status {
	case googleStatusOK:
	case googleStatusZeroResults, googleStatusInvalidRequest:
		return model.Point{}, fmt.Errorf("%w: google status %s", ErrAddressNotFound, body.Status)
	default:
		// OVER_QUERY_LIMIT, OVER_DAILY_LIMIT, REQUEST_DENIED, UNKNOWN_ERROR
		return model.Point{}, fmt.Errorf("%w: google status %s: %s", ErrResolverUnavailable, body.Status, body.ErrorMessage)
	}

	if len(body.Results) == 0 {
		return model.Point{}, fmt.Errorf("%w: no candidates", ErrAddressNotFound)
	}

	loc := body.Results[0].Geometry.Location
	pt = model.Point{Lat: loc.Lat, Lng: loc.Lng}
	if err := pt.Validate(); err != nil {
		return model.Point{}, fmt.Errorf("%w: %w", ErrResolverUnavailable, err)
	}
	return pt, nil
}
