package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoint_GeoJSONOrderIsLongLat(t *testing.T) {
	p, err := NewPoint(79.86, 6.92)
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Point","coordinates":[79.86,6.92]}`, string(data))

	var decoded Point
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, p, decoded)
}

func TestPoint_Ranges(t *testing.T) {
	_, err := NewPoint(181, 0)
	require.ErrorIs(t, err, ErrLongitudeRange)
	_, err = NewPoint(0, -91)
	require.ErrorIs(t, err, ErrLatitudeRange)
	_, err = FromLongLat(nil, nil)
	require.ErrorIs(t, err, ErrMissingCoordinates)

	long, lat := -180.0, 90.0
	p, err := FromLongLat(&long, &lat)
	require.NoError(t, err)
	require.Equal(t, [2]float64{-180, 90}, p.Coordinates())
}

func TestPoint_RejectsOtherGeometry(t *testing.T) {
	var p Point
	require.ErrorIs(t, json.Unmarshal([]byte(`{"type":"LineString","coordinates":[1,2]}`), &p), ErrNotPoint)
	require.ErrorIs(t, json.Unmarshal([]byte(`{"type":"Point","coordinates":[1]}`), &p), ErrMissingCoordinates)
}
