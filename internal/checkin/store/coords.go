package store

import (
	"fmt"
	"strconv"
	"strings"

	"ponto/internal/geo"
)

// The session table stores coordinates in the legacy "(lat,lng)" text form.
// These codecs confine that encoding to the storage boundary; everything
// in-memory uses the structured geo.Coordinate type.

func encodeCoords(c *geo.Coordinate) any {
	if c == nil {
		return nil
	}
	return fmt.Sprintf("(%v,%v)", c.Latitude, c.Longitude)
}

func decodeCoords(raw string) (*geo.Coordinate, error) {
	if raw == "" {
		return nil, nil
	}
	trimmed := strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	parts := strings.SplitN(trimmed, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed coordinate pair %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("malformed latitude in %q: %w", raw, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("malformed longitude in %q: %w", raw, err)
	}
	return &geo.Coordinate{Latitude: lat, Longitude: lng}, nil
}
