package main

import (
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeString(s string) (config, error) {
	return decodeConfig(func(v any) (toml.MetaData, error) {
		return toml.Decode(s, v)
	})
}

func TestDecodeConfig(t *testing.T) {
	t.Parallel()

	c, err := decodeString(`
map = "maps/de_cache.bsp"
vpks = ["csgo/pak01"]
precision = 0.001
far = 2.0
sphere-volumes = true

[progress-limiter]
every = "250ms"
n = 3

[[rays]]
origin = [1.0, 2.0, 3.0]
destination = [4.0, 5.0, 6.0]
`)
	require.NoError(t, err)

	assert.Equal(t, "maps/de_cache.bsp", c.Map)
	assert.Equal(t, []string{"csgo/pak01"}, c.VPKs)
	assert.InDelta(t, 0.001, c.Precision, 1e-9)
	assert.Zero(t, c.Near)
	assert.Equal(t, float32(2), c.Far)
	assert.True(t, c.SphereVolumes)
	assert.Equal(t, 250*time.Millisecond, c.ProgressLimiter.Every.Duration)
	assert.Equal(t, 3, c.ProgressLimiter.N)

	require.Len(t, c.Rays, 1)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, c.Rays[0].origin())
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, c.Rays[0].destination())

	l := c.ProgressLimiter.Limiter()
	assert.Equal(t, 3, l.Burst())
}

func TestDecodeConfig_Defaults(t *testing.T) {
	t.Parallel()

	c, err := decodeString(`map = "a.bsp"`)
	require.NoError(t, err)

	assert.Equal(t, float32(0.00001), c.Precision)
	assert.Equal(t, float32(1), c.Far)
	assert.Equal(t, time.Second, c.ProgressLimiter.Every.Duration)
	assert.Empty(t, c.Rays)
}

func TestDecodeConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config string
		want   error
	}{
		{name: "missing map", config: "far = 1.0", want: errInvalidConfig},
		{name: "inverted range", config: "map = \"a.bsp\"\nnear = 2.0\nfar = 1.0", want: errInvalidConfig},
		{name: "negative precision", config: "map = \"a.bsp\"\nprecision = -1.0", want: errInvalidConfig},
		{name: "no burst", config: "map = \"a.bsp\"\n[progress-limiter]\nn = 0", want: errInvalidConfig},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeString(tt.config)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := decodeString("map = \"a.bsp\"\nspeed = 3\n[progress-limiter]\nburst = 2")

	var unknown errUnknownConfig
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, errUnknownConfig{"speed", "progress-limiter.burst"}, unknown)

	_, err = decodeString(`[progress-limiter]
every = "soon"`)
	assert.Error(t, err)

	_, err = decodeString(`map = "a.bsp"
[[rays]]
origin = [1.0, 2.0]
destination = [1.0, 2.0, 3.0]`)
	assert.Error(t, err)
}

func TestReadConfig_NonExisting(t *testing.T) {
	t.Parallel()

	_, err := readConfig("does_not_exist.toml")
	assert.Error(t, err)
}
