// Command lbvhtrace loads a BSP map, indexes its triangles and traces the rays listed in its config.
package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/saiko-tech/lbvh-tracer/pkg/bsptracer"
	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh"
	"github.com/saiko-tech/lbvh-tracer/pkg/lbvh/collision"
)

var (
	isDebug    = flag.Bool("debug", false, "Enable debug log output")
	configPath = flag.String("config", "config.toml", "Path of the TOML config")
)

func main() {
	flag.Parse()

	var logger *zap.Logger
	if *isDebug {
		logger = unwrap(zap.NewDevelopment())
	} else {
		logger = unwrap(zap.NewProduction())
	}

	code := 0
	if err := execute(logger, *configPath); err != nil {
		logger.Error("Trace fail", zap.Error(err))

		code = 1
	}

	// stderr does not support fsync on every platform, ignore
	_ = logger.Sync()

	os.Exit(code)
}

func execute(logger *zap.Logger, path string) error {
	c, err := readConfig(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %q", path)
	}

	return run(logger, c)
}

func run(logger *zap.Logger, c config) error {
	var treeOpts []lbvh.Option
	if c.SphereVolumes {
		treeOpts = append(treeOpts, lbvh.WithSphereVolumes())
	}

	m, err := bsptracer.LoadMap(c.Map, bsptracer.Options{
		VPKPaths: c.VPKs,
		Logger:   logger,
		Tree:     treeOpts,
	})

	var missing bsptracer.MissingModelsError
	if errors.As(err, &missing) {
		logger.Warn("Props without collision", zap.Int("models", len(missing.Models())))
	} else if err != nil {
		return err
	}

	stats := m.Tree().Stats()
	logger.Info("Map loaded",
		zap.String("map", c.Map),
		zap.Int("triangles", len(m.Triangles())),
		zap.Int("props", len(m.Props)),
		zap.Int("nodes", stats.Nodes),
		zap.Int("maxDepth", stats.MaxDepth))

	progress := c.ProgressLimiter.Limiter()

	for i, r := range c.Rays {
		if progress.Allow() {
			logger.Info("Tracing", zap.Int("ray", i), zap.Int("of", len(c.Rays)))
		}

		if err := traceRay(logger, m, c, i, r); err != nil {
			return err
		}
	}

	return nil
}

func traceRay(logger *zap.Logger, m *bsptracer.Map, c config, i int, r rayConfig) error {
	ray := collision.Ray{Origin: r.origin(), Direction: r.destination().Sub(r.origin())}

	hits, err := m.Tree().Intersect(ray, c.Precision, c.Near, c.Far)
	if err != nil {
		return errors.Wrapf(err, "failed to trace ray %d", i)
	}

	lbvh.SortHits(hits)

	fields := []zap.Field{
		zap.Int("ray", i),
		zap.Any("origin", r.Origin),
		zap.Any("destination", r.Destination),
		zap.Int("hits", len(hits)),
		zap.Bool("visible", m.IsVisible(r.origin(), r.destination())),
	}

	if len(hits) > 0 {
		fields = append(fields,
			zap.Float32("nearest", hits[0].Distance),
			zap.Stringer("primitive", hits[0].ID),
			zap.Any("point", hits[0].Point))
	}

	logger.Info("Ray traced", fields...)

	return nil
}

func unwrap[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}
