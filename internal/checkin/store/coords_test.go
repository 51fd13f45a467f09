package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ponto/internal/geo"
)

func TestCoordsCodec(t *testing.T) {
	t.Run("encodes to the legacy pair form", func(t *testing.T) {
		c := &geo.Coordinate{Latitude: -12.9714, Longitude: -38.5014}
		assert.Equal(t, "(-12.9714,-38.5014)", encodeCoords(c))
	})

	t.Run("nil coordinate encodes to NULL", func(t *testing.T) {
		assert.Nil(t, encodeCoords(nil))
	})

	t.Run("round-trips through the legacy form", func(t *testing.T) {
		original := &geo.Coordinate{Latitude: -12.9714, Longitude: -38.5014}
		decoded, err := decodeCoords("(-12.9714,-38.5014)")
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("tolerates whitespace around components", func(t *testing.T) {
		decoded, err := decodeCoords("( -12.97 , -38.50 )")
		require.NoError(t, err)
		assert.Equal(t, -12.97, decoded.Latitude)
		assert.Equal(t, -38.50, decoded.Longitude)
	})

	t.Run("empty string decodes to nil", func(t *testing.T) {
		decoded, err := decodeCoords("")
		require.NoError(t, err)
		assert.Nil(t, decoded)
	})

	t.Run("rejects malformed pairs", func(t *testing.T) {
		for _, raw := range []string{"(1)", "(a,b)", "1,2,3x(", "(,)"} {
			_, err := decodeCoords(raw)
			assert.Error(t, err, raw)
		}
	})
}
