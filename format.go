package intent

import (
	"strconv"
	"strings"
)

// String renders a one-line summary, e.g.
// "Descriptor { act=intent.action.VIEW dat=https://x flg=0x10000000 }".
func (d *Descriptor) String() string {
	if d == nil {
		return "Descriptor { <nil> }"
	}
	b := &strings.Builder{}
	b.WriteString("Descriptor { ")
	d.writeShortOpts(b, false, true, true)
	b.WriteString(" }")
	return b.String()
}

// ShortString is String without the surrounding braces. When secure is set
// the data locator is reduced to its scheme; comp and extras toggle the
// component and the extras marker.
func (d *Descriptor) ShortString(secure, comp, extras bool) string {
	b := &strings.Builder{}
	d.writeShortOpts(b, secure, comp, extras)
	return b.String()
}

func (d *Descriptor) writeShortOpts(b *strings.Builder, secure, comp, extras bool) {
	first := true
	sep := func() {
		if !first {
			b.WriteByte(' ')
		}
		first = false
	}
	if d.action != nil {
		sep()
		b.WriteString("act=")
		b.WriteString(*d.action)
	}
	if cats := d.Categories(); cats != nil {
		sep()
		b.WriteString("cat=[")
		b.WriteString(strings.Join(cats, ","))
		b.WriteByte(']')
	}
	if d.data != nil {
		sep()
		b.WriteString("dat=")
		if secure {
			if s, ok := d.data.Scheme(); ok {
				b.WriteString(s + ":")
			}
		} else {
			b.WriteString(d.data.String())
		}
	}
	if d.mimeType != nil {
		sep()
		b.WriteString("typ=")
		b.WriteString(*d.mimeType)
	}
	if d.flags != 0 {
		sep()
		b.WriteString("flg=0x")
		b.WriteString(strconv.FormatUint(uint64(d.flags), 16))
	}
	if d.pkg != nil {
		sep()
		b.WriteString("pkg=")
		b.WriteString(*d.pkg)
	}
	if comp && d.component != nil {
		sep()
		b.WriteString("cmp=")
		b.WriteString(d.component.FlattenShort())
	}
	if d.bounds != nil {
		sep()
		b.WriteString("bnds=")
		b.WriteString(d.bounds.ShortString())
	}
	if extras && d.extras != nil {
		sep()
		b.WriteString("(has extras)")
	}
	if d.selector != nil {
		b.WriteString(" sel={")
		d.selector.writeShortOpts(b, secure, comp, extras)
		b.WriteByte('}')
	}
}
