package intent

import "strings"

// FillInMask names descriptor fields for FillIn. As an argument it lists the
// fields to override even when the destination already has them; as a result
// it lists the fields FillIn changed.
type FillInMask uint32

const (
	FillInAction FillInMask = 1 << iota
	FillInData
	FillInCategories
	FillInComponent
	FillInPackage
	FillInSourceBounds
	FillInSelector
)

var fillInNames = []struct {
	bit  FillInMask
	name string
}{
	{FillInAction, "ACTION"},
	{FillInData, "DATA"},
	{FillInCategories, "CATEGORIES"},
	{FillInComponent, "COMPONENT"},
	{FillInPackage, "PACKAGE"},
	{FillInSourceBounds, "SOURCE_BOUNDS"},
	{FillInSelector, "SELECTOR"},
}

// Has reports whether every bit of f is set in m.
func (m FillInMask) Has(f FillInMask) bool { return m&f == f }

// String joins the set field names with '|', e.g. "ACTION|CATEGORIES".
func (m FillInMask) String() string {
	if m == 0 {
		return "0"
	}
	var parts []string
	for _, n := range fillInNames {
		if m&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFillInMask is the inverse of FillInMask.String. Names are matched
// case-insensitively and may be separated by '|' or ','.
func ParseFillInMask(s string) (FillInMask, bool) {
	var m FillInMask
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part == "" || part == "0" {
			continue
		}
		found := false
		for _, n := range fillInNames {
			if strings.EqualFold(part, n.name) {
				m |= n.bit
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return m, true
}

// FillIn is the method form of the package-level FillIn with d as destination.
func (d *Descriptor) FillIn(src *Descriptor, override FillInMask) FillInMask {
	return FillIn(d, src, override)
}

// FillIn copies into dst the fields src has and dst lacks, plus the fields
// named in override whenever src has them. It returns the fields it changed.
//
// Data and type travel as a pair. Categories replace dst's set wholesale.
// Package is never filled while dst has a selector, and filling the selector
// clears dst's package. Flags are ORed in except ImmutableFlags. Extras are
// merged key by key with src winning on collision. FillIn never clears a field
// src lacks.
func FillIn(dst, src *Descriptor, override FillInMask) FillInMask {
	if dst == nil || src == nil {
		return 0
	}
	var changes FillInMask
	if src.action != nil && (dst.action == nil || override&FillInAction != 0) {
		dst.action = src.action
		changes |= FillInAction
	}
	if (src.data != nil || src.mimeType != nil) &&
		((dst.data == nil && dst.mimeType == nil) || override&FillInData != 0) {
		dst.data = src.data
		dst.mimeType = src.mimeType
		changes |= FillInData
	}
	if src.categories != nil && (dst.categories == nil || override&FillInCategories != 0) {
		dst.categories = make(map[string]struct{}, len(src.categories))
		for c := range src.categories {
			dst.categories[c] = struct{}{}
		}
		changes |= FillInCategories
	}
	if src.pkg != nil && (dst.pkg == nil || override&FillInPackage != 0) && dst.selector == nil {
		dst.pkg = src.pkg
		changes |= FillInPackage
	}
	if src.selector != nil && (dst.selector == nil || override&FillInSelector != 0) {
		dst.selector = src.selector.Clone()
		dst.pkg = nil
		changes |= FillInSelector
	}
	if src.component != nil && (dst.component == nil || override&FillInComponent != 0) {
		c := *src.component
		dst.component = &c
		changes |= FillInComponent
	}
	dst.flags |= src.flags &^ ImmutableFlags
	if src.bounds != nil && (dst.bounds == nil || override&FillInSourceBounds != 0) {
		b := *src.bounds
		dst.bounds = &b
		changes |= FillInSourceBounds
	}
	if src.extras.Len() > 0 {
		if dst.extras == nil {
			dst.extras = NewExtras()
		}
		dst.extras.PutAll(src.extras)
	}
	return changes
}
