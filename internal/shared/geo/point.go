// Package geo holds the location value used by service and delivery orders.
package geo

import (
	"encoding/json"
	"errors"
	"math"
)

var (
	ErrMissingCoordinates = errors.New("coordinates are required")
	ErrLongitudeRange     = errors.New("longitude must be within [-180, 180]")
	ErrLatitudeRange      = errors.New("latitude must be within [-90, 90]")
	ErrNotPoint           = errors.New("geometry type must be Point")
)

const pointType = "Point"

// Point is a WGS84 position. It serialises as GeoJSON with coordinates in [long, lat] order.
type Point struct {
	Long float64
	Lat  float64
}

// NewPoint validates the coordinate ranges.
func NewPoint(long, lat float64) (Point, error) {
	p := Point{Long: long, Lat: lat}
	return p, p.Validate()
}

// FromLongLat builds a point from optional coordinates; both are required.
func FromLongLat(long, lat *float64) (Point, error) {
	if long == nil || lat == nil {
		return Point{}, ErrMissingCoordinates
	}
	return NewPoint(*long, *lat)
}

func (p Point) Validate() error {
	if math.IsNaN(p.Long) || p.Long < -180 || p.Long > 180 {
		return ErrLongitudeRange
	}
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return ErrLatitudeRange
	}
	return nil
}

// Coordinates returns [long, lat].
func (p Point) Coordinates() [2]float64 { return [2]float64{p.Long, p.Lat} }

type geoJSON struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSON{Type: pointType, Coordinates: []float64{p.Long, p.Lat}})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw geoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != pointType {
		return ErrNotPoint
	}
	if len(raw.Coordinates) != 2 {
		return ErrMissingCoordinates
	}
	point, err := NewPoint(raw.Coordinates[0], raw.Coordinates[1])
	if err != nil {
		return err
	}
	*p = point
	return nil
}
