package intent

import (
	"maps"
	"slices"
)

// Well-known actions, categories and extra keys.
const (
	ActionMain    = "intent.action.MAIN"
	ActionView    = "intent.action.VIEW"
	ActionChooser = "intent.action.CHOOSER"

	CategoryDefault  = "intent.category.DEFAULT"
	CategoryLauncher = "intent.category.LAUNCHER"

	ExtraDescriptor = "intent.extra.DESCRIPTOR"
	ExtraTitle      = "intent.extra.TITLE"
)

// Flags is the 32-bit behavioral bitmask of a descriptor.
type Flags uint32

const (
	FlagGrantReadURIPermission  Flags = 0x00000001
	FlagGrantWriteURIPermission Flags = 0x00000002
	FlagFromBackground          Flags = 0x00000004
	FlagDebugLogResolution      Flags = 0x00000008
	FlagExcludeStoppedPackages  Flags = 0x00000010
	FlagIncludeStoppedPackages  Flags = 0x00000020

	FlagActivityTaskOnHome         Flags = 0x00004000
	FlagActivityClearTask          Flags = 0x00008000
	FlagActivityNoAnimation        Flags = 0x00010000
	FlagActivityReorderToFront     Flags = 0x00020000
	FlagActivityNoUserAction       Flags = 0x00040000
	FlagActivityClearWhenTaskReset Flags = 0x00080000
	FlagActivityExcludeFromRecents Flags = 0x00800000
	FlagActivityPreviousIsTop      Flags = 0x01000000
	FlagActivityForwardResult      Flags = 0x02000000
	FlagActivityClearTop           Flags = 0x04000000
	FlagActivityMultipleTask       Flags = 0x08000000
	FlagActivityNewTask            Flags = 0x10000000
	FlagActivitySingleTop          Flags = 0x20000000
	FlagActivityNoHistory          Flags = 0x40000000

	FlagReceiverRegisteredOnly Flags = 0x40000000
	FlagReceiverReplacePending Flags = 0x20000000

	// ImmutableFlags are never changed by FillIn.
	ImmutableFlags = FlagGrantReadURIPermission | FlagGrantWriteURIPermission
)

// Descriptor names a target component, an action on it, the data to act on and
// a typed payload. The zero value is an empty descriptor ready to use.
//
// Invariants:
//   - SetData clears the type and SetType clears the data; SetDataAndType sets both.
//   - A descriptor never holds both a package and a selector.
//   - A descriptor is never its own selector; nested descriptors are always
//     private deep copies.
//   - Empty categories and empty extras are stored as absent.
type Descriptor struct {
	action     *string
	data       *URI
	mimeType   *string
	pkg        *string
	component  *ComponentName
	selector   *Descriptor
	categories map[string]struct{}
	extras     *Extras
	flags      Flags
	bounds     *Rect
}

// New returns an empty descriptor.
func New() *Descriptor { return &Descriptor{} }

// NewAction returns a descriptor with only the action set.
func NewAction(action string) *Descriptor {
	d := &Descriptor{}
	d.SetAction(action)
	return d
}

// NewView returns a descriptor with an action and data.
func NewView(action string, data URI) *Descriptor {
	d := NewAction(action)
	d.data = &data
	return d
}

// NewExplicit returns a descriptor addressing an exact component.
func NewExplicit(action string, data URI, component ComponentName) *Descriptor {
	d := NewView(action, data)
	d.component = &component
	return d
}

// Clone returns a deep copy of d. Clone of nil is nil.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := d.CloneFilter()
	out.flags = d.flags
	out.extras = d.extras.Clone()
	if d.bounds != nil {
		b := *d.bounds
		out.bounds = &b
	}
	out.selector = d.selector.Clone()
	return out
}

// CloneFilter copies only the fields that take part in filter equality:
// action, data, type, package, component and categories.
func (d *Descriptor) CloneFilter() *Descriptor {
	if d == nil {
		return nil
	}
	return &Descriptor{
		action:     d.action,
		data:       d.data,
		mimeType:   d.mimeType,
		pkg:        d.pkg,
		component:  d.component,
		categories: maps.Clone(d.categories),
	}
}

// ---- action / data / type ----

// Action returns the requested action.
func (d *Descriptor) Action() (string, bool) { return deref(d.action) }

// SetAction sets the action; the empty string is a present action.
func (d *Descriptor) SetAction(action string) { d.action = &action }

// ClearAction makes the action absent.
func (d *Descriptor) ClearAction() { d.action = nil }

// Data returns the data locator.
func (d *Descriptor) Data() (URI, bool) {
	if d.data == nil {
		return URI{}, false
	}
	return *d.data, true
}

// Scheme returns the scheme of the data locator, if any.
func (d *Descriptor) Scheme() (string, bool) {
	if d.data == nil {
		return "", false
	}
	return d.data.Scheme()
}

// SetData sets the data locator and clears the type.
func (d *Descriptor) SetData(data URI) {
	d.data = &data
	d.mimeType = nil
}

// ClearData clears the data locator, leaving the type alone.
func (d *Descriptor) ClearData() { d.data = nil }

// Type returns the MIME type.
func (d *Descriptor) Type() (string, bool) { return deref(d.mimeType) }

// SetType sets the MIME type and clears the data locator.
func (d *Descriptor) SetType(mimeType string) {
	d.data = nil
	d.mimeType = &mimeType
}

// ClearType clears the MIME type, leaving the data alone.
func (d *Descriptor) ClearType() { d.mimeType = nil }

// SetDataAndType sets both halves of the data pair at once.
func (d *Descriptor) SetDataAndType(data URI, mimeType string) {
	d.data = &data
	d.mimeType = &mimeType
}

// ---- package / component / selector ----

// Package returns the namespace resolution is restricted to.
func (d *Descriptor) Package() (string, bool) { return deref(d.pkg) }

// SetPackage restricts resolution to one namespace. It fails while a selector
// is set.
func (d *Descriptor) SetPackage(name string) error {
	if d.selector != nil {
		return &InvalidStateError{Code: CodeSelectorPackageConflict, Message: "can't set package name when selector is already set"}
	}
	d.pkg = &name
	return nil
}

// ClearPackage makes the package absent.
func (d *Descriptor) ClearPackage() { d.pkg = nil }

// Component returns the explicit target.
func (d *Descriptor) Component() (ComponentName, bool) {
	if d.component == nil {
		return ComponentName{}, false
	}
	return *d.component, true
}

// SetComponent sets the explicit target.
func (d *Descriptor) SetComponent(c ComponentName) { d.component = &c }

// SetClassName is SetComponent(ComponentName{pkg, cls}).
func (d *Descriptor) SetClassName(pkg, cls string) {
	d.SetComponent(ComponentName{Package: pkg, Class: cls})
}

// ClearComponent makes the component absent.
func (d *Descriptor) ClearComponent() { d.component = nil }

// Selector returns the selector owned by d, or nil. The returned descriptor
// belongs to d; mutate it only through d's lifetime.
func (d *Descriptor) Selector() *Descriptor { return d.selector }

// SetSelector stores a deep copy of sel as the alternate resolution
// descriptor; nil clears it. It fails when sel is d or when d has a package.
func (d *Descriptor) SetSelector(sel *Descriptor) error {
	if sel == nil {
		d.selector = nil
		return nil
	}
	if sel == d {
		return &InvalidStateError{Code: CodeSelfSelector, Message: "descriptor being set as a selector of itself"}
	}
	if d.pkg != nil {
		return &InvalidStateError{Code: CodeSelectorPackageConflict, Message: "can't set selector when package name is already set"}
	}
	d.selector = sel.Clone()
	return nil
}

// ---- categories ----

// HasCategory reports whether category is present.
func (d *Descriptor) HasCategory(category string) bool {
	_, ok := d.categories[category]
	return ok
}

// Categories returns the categories sorted, or nil when there are none.
func (d *Descriptor) Categories() []string {
	if len(d.categories) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(d.categories))
}

// AddCategory adds category to the set.
func (d *Descriptor) AddCategory(category string) {
	if d.categories == nil {
		d.categories = map[string]struct{}{}
	}
	d.categories[category] = struct{}{}
}

// RemoveCategory removes category; removing the last one leaves the set absent.
func (d *Descriptor) RemoveCategory(category string) {
	if d.categories == nil {
		return
	}
	delete(d.categories, category)
	if len(d.categories) == 0 {
		d.categories = nil
	}
}

// ---- flags ----

// Flags returns the flag bits.
func (d *Descriptor) Flags() Flags { return d.flags }

// SetFlags replaces the flag bits with f.
func (d *Descriptor) SetFlags(f Flags) { d.flags = f }

// AddFlags sets the bits in f.
func (d *Descriptor) AddFlags(f Flags) { d.flags |= f }

// RemoveFlags clears the bits in f.
func (d *Descriptor) RemoveFlags(f Flags) { d.flags &^= f }

// ---- source bounds ----

// SourceBounds returns the on-screen bounds of the sender.
func (d *Descriptor) SourceBounds() (Rect, bool) {
	if d.bounds == nil {
		return Rect{}, false
	}
	return *d.bounds, true
}

// SetSourceBounds sets the source bounds.
func (d *Descriptor) SetSourceBounds(r Rect) { d.bounds = &r }

// ClearSourceBounds makes the source bounds absent.
func (d *Descriptor) ClearSourceBounds() { d.bounds = nil }

// ---- extras ----

// PutExtra stores a copy of v under key.
func (d *Descriptor) PutExtra(key string, v Value) {
	if d.extras == nil {
		d.extras = NewExtras()
	}
	d.extras.Put(key, v)
}

// Extra returns a copy of the value under key.
func (d *Descriptor) Extra(key string) (Value, bool) { return d.extras.Get(key) }

// HasExtra reports whether key is in the payload.
func (d *Descriptor) HasExtra(key string) bool { return d.extras.Has(key) }

// RemoveExtra deletes key; removing the last entry leaves the extras absent.
func (d *Descriptor) RemoveExtra(key string) {
	d.extras.Remove(key)
	if d.extras.Len() == 0 {
		d.extras = nil
	}
}

// Extras returns a deep copy of the payload, or nil when there is none.
func (d *Descriptor) Extras() *Extras { return d.extras.Clone() }

// PutExtras copies every entry of e into d; entries of e win on collision.
func (d *Descriptor) PutExtras(e *Extras) {
	if e.Len() == 0 {
		return
	}
	if d.extras == nil {
		d.extras = NewExtras()
	}
	d.extras.PutAll(e)
}

// ReplaceExtras discards the current payload and stores a copy of e.
func (d *Descriptor) ReplaceExtras(e *Extras) {
	if e.Len() == 0 {
		d.extras = nil
		return
	}
	d.extras = e.Clone()
}

// Typed extra getters return def, or false, when the key is absent or holds
// another kind.

// BoolExtra returns the bool under key, or def.
func (d *Descriptor) BoolExtra(key string, def bool) bool {
	return extraOr(d, key, Value.AsBool, def)
}

// IntExtra returns the int32 under key, or def.
func (d *Descriptor) IntExtra(key string, def int32) int32 {
	return extraOr(d, key, Value.AsInt, def)
}

// LongExtra returns the int64 under key, or def.
func (d *Descriptor) LongExtra(key string, def int64) int64 {
	return extraOr(d, key, Value.AsLong, def)
}

// FloatExtra returns the float32 under key, or def.
func (d *Descriptor) FloatExtra(key string, def float32) float32 {
	return extraOr(d, key, Value.AsFloat, def)
}

// DoubleExtra returns the float64 under key, or def.
func (d *Descriptor) DoubleExtra(key string, def float64) float64 {
	return extraOr(d, key, Value.AsDouble, def)
}

// StringExtra returns the string under key.
func (d *Descriptor) StringExtra(key string) (string, bool) {
	v, ok := d.extras.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// StringSliceExtra returns a copy of the string slice under key.
func (d *Descriptor) StringSliceExtra(key string) ([]string, bool) {
	v, ok := d.extras.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsStringSlice()
}

// BytesExtra returns a copy of the bytes under key.
func (d *Descriptor) BytesExtra(key string) ([]byte, bool) {
	v, ok := d.extras.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsBytes()
}

// ExtrasExtra returns a copy of the nested payload under key.
func (d *Descriptor) ExtrasExtra(key string) (*Extras, bool) {
	v, ok := d.extras.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsExtras()
}

// DescriptorExtra returns a copy of the descriptor under key.
func (d *Descriptor) DescriptorExtra(key string) (*Descriptor, bool) {
	v, ok := d.extras.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsDescriptor()
}

func extraOr[T any](d *Descriptor, key string, as func(Value) (T, bool), def T) T {
	v, ok := d.extras.Get(key)
	if !ok {
		return def
	}
	if t, ok := as(v); ok {
		return t
	}
	return def
}

// Equal reports full structural equality, including extras, flags, bounds and
// the selector chain.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !FilterEquals(d, o) || d.flags != o.flags {
		return false
	}
	if !ptrEqual(d.bounds, o.bounds) {
		return false
	}
	if !d.extras.Equal(o.extras) {
		return false
	}
	return d.selector.Equal(o.selector)
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
