package main

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type config struct {
	// Map is the path of the .bsp file.
	Map string `toml:"map"`
	// VPKs are searched for prop models, without the _dir.vpk suffix.
	VPKs []string `toml:"vpks"`

	// Precision is the barycentric slack of the triangle test.
	Precision float32 `toml:"precision"`
	// Near and Far bound the hits along each ray, in units of origin to destination.
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`

	SphereVolumes bool `toml:"sphere-volumes"`

	Rays []rayConfig `toml:"rays"`

	// ProgressLimiter throttles the progress log while tracing.
	ProgressLimiter limiter `toml:"progress-limiter"`
}

type rayConfig struct {
	Origin      [3]float32 `toml:"origin"`
	Destination [3]float32 `toml:"destination"`
}

func (r rayConfig) origin() mgl32.Vec3 {
	return mgl32.Vec3(r.Origin)
}

func (r rayConfig) destination() mgl32.Vec3 {
	return mgl32.Vec3(r.Destination)
}

type limiter struct {
	Every duration `toml:"every"`
	N     int      `toml:"n"`
}

func (l *limiter) Limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(l.Every.Duration), l.N)
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func defaultConfig() config {
	return config{
		Precision: 0.00001,
		Near:      0,
		Far:       1,
		ProgressLimiter: limiter{
			Every: duration{time.Second},
			N:     1,
		},
	}
}

var errInvalidConfig = errors.New("invalid config")

func (c config) validate() error {
	switch {
	case c.Map == "":
		return errors.Wrap(errInvalidConfig, "map is required")
	case c.Precision < 0:
		return errors.Wrapf(errInvalidConfig, "precision %v is negative", c.Precision)
	case c.Near < 0 || c.Far < c.Near:
		return errors.Wrapf(errInvalidConfig, "near %v and far %v do not form a range", c.Near, c.Far)
	case c.ProgressLimiter.N < 1:
		return errors.Wrapf(errInvalidConfig, "progress-limiter n %d must be positive", c.ProgressLimiter.N)
	}

	return nil
}

// decodeConfig decodes a TOML config over the defaults, unknown keys are an error.
func decodeConfig(decode func(v any) (toml.MetaData, error)) (config, error) {
	c := defaultConfig()

	meta, err := decode(&c)
	if err != nil {
		return config{}, err
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var err errUnknownConfig
		for _, key := range undecoded {
			err = append(err, key.String())
		}

		return config{}, err
	}

	if err := c.validate(); err != nil {
		return config{}, err
	}

	return c, nil
}

func readConfig(path string) (config, error) {
	return decodeConfig(func(v any) (toml.MetaData, error) {
		return toml.DecodeFile(path, v)
	})
}

type errUnknownConfig []string

func (e errUnknownConfig) Error() string {
	return "unknown config keys: [" + strings.Join(e, ", ") + "]"
}
