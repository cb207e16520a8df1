package intent

import (
	"context"
	"errors"
)

// Codec converts descriptors to and from a wire representation W.
// Decode(Encode(d)) is filter-equal to d for every codec; binary codecs also
// preserve the remaining fields.
type Codec[W any] interface {
	Encode(ctx context.Context, d *Descriptor) (W, error)
	Decode(ctx context.Context, w W) (*Descriptor, error)
}

// Resolver maps a descriptor to the concrete component that should receive
// it. Implementations live outside this module (a component registry); this
// package only fixes the boundary.
type Resolver interface {
	Resolve(ctx context.Context, d *Descriptor) (ComponentName, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, d *Descriptor) (ComponentName, error)

func (f ResolverFunc) Resolve(ctx context.Context, d *Descriptor) (ComponentName, error) {
	return f(ctx, d)
}

// ErrUnresolved is returned by resolvers that find no matching component.
var ErrUnresolved = errors.New("intent: no component matches descriptor")
