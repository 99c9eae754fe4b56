package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Geometry validation errors.
var (
	ErrInvalidPoint    = errors.New("coordinates out of range")
	ErrPolygonTooSmall = errors.New("boundary must contain at least 3 distinct vertices")
	ErrInvalidGeoJSON  = errors.New("boundary must be a GeoJSON Polygon")
)

// MinBoundaryVertices is the minimum number of distinct vertices in a boundary.
const MinBoundaryVertices = 3

// Point is a geographic coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point lies within WGS84 ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidPoint, p.Lat, p.Lng)
	}
	return nil
}

// LngLat is a single boundary vertex in GeoJSON axis order.
type LngLat [2]float64

// Lng returns the longitude.
func (v LngLat) Lng() float64 { return v[0] }

// Lat returns the latitude.
func (v LngLat) Lat() float64 { return v[1] }

// Polygon is an assembly boundary. The ring is stored open; the closing
// vertex is implied and stripped on decode if present.
type Polygon struct {
	Ring []LngLat
}

type geoJSONPolygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// MarshalJSON encodes the polygon as a GeoJSON Polygon with a closed ring.
func (p Polygon) MarshalJSON() ([]byte, error) {
	ring := make([][]float64, 0, len(p.Ring)+1)
	for _, v := range p.Ring {
		ring = append(ring, []float64{v[0], v[1]})
	}
	if len(p.Ring) > 0 {
		first := p.Ring[0]
		ring = append(ring, []float64{first[0], first[1]})
	}
	return json.Marshal(geoJSONPolygon{
		Type:        "Polygon",
		Coordinates: [][][]float64{ring},
	})
}

// UnmarshalJSON decodes a GeoJSON Polygon. Only the outer ring is kept.
func (p *Polygon) UnmarshalJSON(data []byte) error {
	var raw geoJSONPolygon
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeoJSON, err)
	}
	if raw.Type != "Polygon" || len(raw.Coordinates) == 0 {
		return ErrInvalidGeoJSON
	}

	ring := make([]LngLat, 0, len(raw.Coordinates[0]))
	for _, pos := range raw.Coordinates[0] {
		if len(pos) < 2 {
			return fmt.Errorf("%w: position needs [lng, lat]", ErrInvalidGeoJSON)
		}
		ring = append(ring, LngLat{pos[0], pos[1]})
	}
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}

	p.Ring = ring
	return nil
}

// Validate checks vertex count and coordinate ranges.
func (p Polygon) Validate() error {
	seen := make(map[LngLat]struct{}, len(p.Ring))
	for _, v := range p.Ring {
		if err := (Point{Lat: v.Lat(), Lng: v.Lng()}).Validate(); err != nil {
			return err
		}
		seen[v] = struct{}{}
	}
	if len(seen) < MinBoundaryVertices {
		return ErrPolygonTooSmall
	}
	return nil
}

// GeocodeEntry is a cached resolver outcome. NotFound entries record that the
// provider had no candidate for the address.
type GeocodeEntry struct {
	Point    Point
	NotFound bool
}
