package uriform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	intent "github.com/reoring/intent"
)

func TestToURI_ViewWithCategories(t *testing.T) {
	d := intent.NewView(intent.ActionView, intent.ParseURI("https://example.com/a?b=1"))
	d.AddCategory("b.cat")
	d.AddCategory("a.cat")

	got := ToURI(d, 0)
	assert.Equal(t, "descriptor://example.com/a?b=1#Descriptor;scheme=https;action=intent.action.VIEW;category=a.cat;category=b.cat;end", got)
}

func TestToURI_TokenOrderAndEscaping(t *testing.T) {
	d := intent.NewAction("a;b=c")
	d.SetType("text/plain")
	d.SetFlags(0x10000000)
	_ = d.SetPackage("com.app")
	d.SetClassName("com.app", "com.app.Main")
	d.SetSourceBounds(intent.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4})
	d.PutExtra("n", intent.Int(42))
	d.PutExtra("s", intent.String("x y"))
	d.PutExtra("arr", intent.IntSlice([]int32{1}))

	got := ToURI(d, 0)
	assert.Equal(t, "#Descriptor;action=a%3Bb%3Dc;type=text/plain;launchFlags=0x10000000;package=com.app;component=com.app/.Main;sourceBounds=1%202%203%204;i.n=42;S.s=x%20y;end", got)
}

func TestToURI_FlagScheme(t *testing.T) {
	d := intent.NewAction(intent.ActionMain)
	assert.Equal(t, "descriptor:#Descriptor;action=intent.action.MAIN;end", ToURI(d, FlagScheme))
	assert.Equal(t, "#Descriptor;action=intent.action.MAIN;end", ToURI(d, 0))
}

func TestToURI_Selector(t *testing.T) {
	d := intent.NewAction(intent.ActionMain)
	sel := intent.NewView(intent.ActionView, intent.ParseURI("content://x/1"))
	require.NoError(t, d.SetSelector(sel))

	got := ToURI(d, 0)
	assert.Equal(t, "#Descriptor;action=intent.action.MAIN;SEL;data=content%3A%2F%2Fx%2F1;action=intent.action.VIEW;end", got)

	back, err := ParseURI(got, 0)
	require.NoError(t, err)
	assert.True(t, back.Equal(d), "got %v", back)
}

func TestParseURI_RoundTrip(t *testing.T) {
	d := intent.NewView(intent.ActionView, intent.ParseURI("https://example.com/p"))
	d.AddCategory(intent.CategoryDefault)
	d.SetClassName("com.app", "com.other.Main")
	d.SetFlags(0x3)
	d.PutExtra("b", intent.Bool(true))
	d.PutExtra("l", intent.Long(-9000000000))
	d.PutExtra("f", intent.Float(1.5))
	d.PutExtra("d", intent.Double(0.1))
	d.PutExtra("key with;semi", intent.String("v=%"))

	back, err := ParseURI(ToURI(d, 0), 0)
	require.NoError(t, err)
	assert.True(t, back.Equal(d), "got %v", back)
}

func TestParseURI_DataWithoutScheme(t *testing.T) {
	d := intent.NewView(intent.ActionView, intent.ParseURI("relative/path"))
	for _, f := range []Flags{0, FlagScheme} {
		back, err := ParseURI(ToURI(d, f), 0)
		require.NoError(t, err)
		u, ok := back.Data()
		require.True(t, ok)
		assert.Equal(t, "relative/path", u.String())
	}
}

func TestParseURI_DataAndTypeKeptTogether(t *testing.T) {
	d := intent.New()
	d.SetDataAndType(intent.ParseURI("file:///a.txt"), "text/plain")

	back, err := ParseURI(ToURI(d, 0), 0)
	require.NoError(t, err)
	u, ok := back.Data()
	require.True(t, ok)
	assert.Equal(t, "file:///a.txt", u.String())
	typ, ok := back.Type()
	require.True(t, ok)
	assert.Equal(t, "text/plain", typ)
}

func TestParseURI_IgnoresUnknownPlainTokens(t *testing.T) {
	d, err := ParseURI("#Descriptor;action=A;futureToken=1;end", 0)
	require.NoError(t, err)
	a, _ := d.Action()
	assert.Equal(t, "A", a)
}

func TestParseURI_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		code string
	}{
		{"no marker", "https://x", intent.CodeInvalidFormat},
		{"missing end", "#Descriptor;action=A;", intent.CodeMissingEnd},
		{"unterminated token", "#Descriptor;action=A", intent.CodeMissingEnd},
		{"trailing after end", "#Descriptor;end;action=B;end", intent.CodeTrailingData},
		{"trailing text", "#Descriptor;endx", intent.CodeTrailingData},
		{"bad escape", "#Descriptor;action=%G1;end", intent.CodeInvalidEscape},
		{"truncated escape", "#Descriptor;action=%4;end", intent.CodeInvalidEscape},
		{"unknown extra tag", "#Descriptor;z.k=1;end", intent.CodeUnknownType},
		{"bad int extra", "#Descriptor;i.k=x;end", intent.CodeInvalidFormat},
		{"bad flags", "#Descriptor;launchFlags=zz;end", intent.CodeInvalidFormat},
		{"bad component", "#Descriptor;component=nope;end", intent.CodeInvalidFormat},
		{"bad bounds", "#Descriptor;sourceBounds=1%202;end", intent.CodeInvalidFormat},
		{"token without value", "#Descriptor;action;end", intent.CodeInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseURI(tc.in, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, intent.ErrDecode))
			de, ok := intent.AsDecodeError(err)
			require.True(t, ok)
			assert.Equal(t, tc.code, de.Code)
		})
	}
}

func TestParseURI_SelectorDepthLimit(t *testing.T) {
	in := "#Descriptor;"
	for i := 0; i <= MaxSelectorDepth; i++ {
		in += "SEL;"
	}
	in += "end"
	_, err := ParseURI(in, 0)
	de, ok := intent.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, intent.CodeTooDeep, de.Code)
}

func TestParseURI_SelectorPackageConflict(t *testing.T) {
	_, err := ParseURI("#Descriptor;package=p;SEL;action=A;end", 0)
	de, ok := intent.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, intent.CodeInvalidFormat, de.Code)
	assert.True(t, errors.Is(err, intent.ErrInvalidState))
}

func TestEscapeUnescape(t *testing.T) {
	assert.Equal(t, "a%20b%3B%3D%23%25", Escape("a b;=#%", ""))
	assert.Equal(t, "a/b", Escape("a/b", "/"))
	assert.Equal(t, "_-!.~'()*", Escape("_-!.~'()*", ""))

	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		got, err := Unescape(Escape(s, ""), 0)
		if err != nil {
			t.Fatalf("unescape: %v", err)
		}
		if got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	})
}

func TestCodec_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := Codec(0)
	_, err := c.Encode(ctx, intent.New())
	assert.ErrorIs(t, err, context.Canceled)
	_, err = c.Decode(ctx, "#Descriptor;end")
	assert.ErrorIs(t, err, context.Canceled)
}

var (
	identGen = rapid.StringMatching(`[a-z][a-z0-9_.]{0,12}`)
	// rawGen yields arbitrary bytes, including invalid UTF-8.
	rawGen = rapid.Map(rapid.SliceOfN(rapid.Byte(), 0, 8), func(b []byte) string { return string(b) })
	// nameGen covers component halves that need escaping or look abbreviated.
	nameGen = rapid.OneOf(identGen, rawGen, rapid.SampledFrom([]string{"", ".", ".X", "a/b", "/", "%2F", "p."}))
)

func genComponent(t *rapid.T) intent.ComponentName {
	pkg := nameGen.Draw(t, "cpkg")
	cls := nameGen.Draw(t, "ccls")
	if rapid.Bool().Draw(t, "inPkg") {
		cls = pkg + "." + cls
	}
	return intent.ComponentName{Package: pkg, Class: cls}
}

func genDescriptor(t *rapid.T, depth int) *intent.Descriptor {
	d := intent.New()
	if rapid.Bool().Draw(t, "hasAction") {
		d.SetAction(rapid.String().Draw(t, "action"))
	}
	switch rapid.IntRange(0, 5).Draw(t, "dataMode") {
	case 4:
		d.SetData(intent.ParseURI(""))
	case 5:
		d.SetData(intent.ParseURI(rawGen.Draw(t, "rawData")))
	case 1:
		d.SetData(intent.ParseURI(identGen.Draw(t, "scheme") + ":" + rapid.StringMatching(`[^#]{0,20}`).Draw(t, "ssp")))
	case 2:
		d.SetType(identGen.Draw(t, "type") + "/" + identGen.Draw(t, "subtype"))
	case 3:
		d.SetDataAndType(intent.ParseURI("https://"+identGen.Draw(t, "host")), "text/plain")
	}
	for _, c := range rapid.SliceOfN(rapid.String(), 0, 3).Draw(t, "cats") {
		d.AddCategory(c)
	}
	d.SetFlags(intent.Flags(rapid.Uint32().Draw(t, "flags")))
	if rapid.Bool().Draw(t, "hasComp") {
		d.SetComponent(genComponent(t))
	}
	if rapid.Bool().Draw(t, "hasBounds") {
		d.SetSourceBounds(intent.Rect{
			Left: rapid.Int32().Draw(t, "l"), Top: rapid.Int32().Draw(t, "t"),
			Right: rapid.Int32().Draw(t, "r"), Bottom: rapid.Int32().Draw(t, "b"),
		})
	}
	for i, k := range rapid.SliceOfNDistinct(rapid.String(), 0, 3, rapid.ID[string]).Draw(t, "keys") {
		switch i % 3 {
		case 0:
			d.PutExtra(k, intent.Int(rapid.Int32().Draw(t, "iv")))
		case 1:
			d.PutExtra(k, intent.String(rapid.String().Draw(t, "sv")))
		default:
			d.PutExtra(k, intent.Double(rapid.Float64Range(-1e300, 1e300).Draw(t, "dv")))
		}
	}
	if depth < 2 && rapid.IntRange(0, 3).Draw(t, "hasSel") == 0 {
		_ = d.SetSelector(genDescriptor(t, depth+1))
	} else if rapid.Bool().Draw(t, "hasPkg") {
		_ = d.SetPackage(nameGen.Draw(t, "pkg"))
	}
	return d
}

func TestToURI_EmptyData(t *testing.T) {
	d := intent.NewView("A", intent.ParseURI(""))
	got := ToURI(d, 0)
	assert.Equal(t, "#Descriptor;data=;action=A;end", got)

	for _, flags := range []Flags{0, FlagScheme} {
		back, err := ParseURI(ToURI(d, flags), 0)
		require.NoError(t, err)
		data, ok := back.Data()
		assert.True(t, ok, "flags %d", flags)
		assert.True(t, data.IsZero())
		assert.True(t, back.Equal(d))
	}

	none, err := ParseURI("#Descriptor;action=A;end", 0)
	require.NoError(t, err)
	_, ok := none.Data()
	assert.False(t, ok)
}

func TestComponent_RoundTrip(t *testing.T) {
	tests := []struct {
		comp intent.ComponentName
		tok  string
	}{
		{intent.ComponentName{Package: "com.app", Class: "com.app.Main"}, "component=com.app/.Main;"},
		{intent.ComponentName{Package: "p", Class: ""}, "component=p/;"},
		{intent.ComponentName{Package: "p", Class: ".X"}, "component=p/%252EX;"},
		{intent.ComponentName{Package: "a/b", Class: "c"}, "component=a%252Fb/c;"},
		{intent.ComponentName{Package: "p", Class: "p."}, "component=p/p.;"},
		{intent.ComponentName{}, "component=/;"},
	}
	for _, tt := range tests {
		d := intent.New()
		d.SetComponent(tt.comp)
		s := ToURI(d, 0)
		assert.Contains(t, s, tt.tok)
		back, err := ParseURI(s, 0)
		require.NoError(t, err, s)
		got, ok := back.Component()
		require.True(t, ok)
		assert.Equal(t, tt.comp, got, s)
	}
}

func TestParseURI_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDescriptor(t, 0)
		s := ToURI(d, 0)
		back, err := ParseURI(s, 0)
		if err != nil {
			t.Fatalf("ParseURI(%q): %v", s, err)
		}
		if !intent.FilterEquals(d, back) {
			t.Fatalf("not filter-equal:\n in  %v\n out %v\n uri %s", d, back, s)
		}
		if !back.Equal(d) {
			t.Fatalf("not equal:\n in  %v\n out %v\n uri %s", d, back, s)
		}
	})
}
