package lbvh

import "go.uber.org/zap"

type options struct {
	log           *zap.Logger
	sphereVolumes bool
}

// Option configures Build.
type Option func(*options)

// WithLogger sets the logger build statistics are written to.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithSphereVolumes makes internal nodes carry bounding spheres instead of boxes.
// Leaves always keep their tight box.
func WithSphereVolumes() Option {
	return func(o *options) {
		o.sphereVolumes = true
	}
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.log == nil {
		o.log = zap.NewNop()
	}

	o.log = o.log.Named("lbvh")

	return o
}
