package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// NominatimBaseURL is the public OpenStreetMap Nominatim instance.
const NominatimBaseURL = "https://nominatim.openstreetmap.org"

// DefaultUserAgent identifies this service to Nominatim, which rejects
// anonymous clients.
const DefaultUserAgent = "zbor-gradjana/1.0"

// Nominatim resolves addresses with an OpenStreetMap Nominatim server.
type Nominatim struct {
	client    *http.Client
	baseURL   string
	userAgent string
	country   string
}

// NewNominatim creates a Nominatim resolver.
func NewNominatim(client *http.Client, baseURL, userAgent, country string) *Nominatim {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Nominatim{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		country:   country,
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks up addr and returns the best-ranked place.
func (n *Nominatim) Resolve(ctx context.Context, addr model.Address) (pt model.Point, err error) {
	ctx, span := startSpan(ctx, ProviderNominatim)
	defer func() { endSpan(span, err) }()

	if !complete(addr) {
		return model.Point{}, fmt.Errorf("%w: incomplete address", ErrAddressNotFound)
	}

	q := url.Values{}
	q.Set("q", FormatAddress(addr, n.country))
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return model.Point{}, fmt.Errorf("%w: build request: %w", ErrResolverUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", n.userAgent)

	var places []nominatimPlace
	if err := getJSON(ctx, n.client, req, &places); err != nil {
		return model.Point{}, err
	}
	if len(places) == 0 {
		return model.Point{}, fmt.Errorf("%w: no candidates", ErrAddressNotFound)
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return model.Point{}, fmt.Errorf("%w: malformed coordinates %q,%q", ErrResolverUnavailable, places[0].Lat, places[0].Lon)
	}

	pt = model.Point{Lat: lat, Lng: lng}
	if err := pt.Validate(); err != nil {
		return model.Point{}, fmt.Errorf("%w: %w", ErrResolverUnavailable, err)
	}
	return pt, nil
}
