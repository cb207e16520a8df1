package document

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	intent "github.com/reoring/intent"
)

const sampleYAML = `
action: intent.action.VIEW
data: https://example.com/item/1
categories: [intent.category.DEFAULT, intent.category.BROWSABLE]
component: com.app/.Viewer
flags: 0x10000000
sourceBounds: [1, 2, 3, 4]
extras:
  - {key: count, type: int, value: 3}
  - {key: big, type: long, value: 9007199254740993}
  - {key: ratio, type: float, value: 0.5}
  - {key: enabled, type: bool, value: true}
  - {key: tags, type: "string[]", value: [a, b]}
  - {key: raw, type: bytes, value: AAH/}
  - key: nested
    type: extras
    extras:
      - {key: name, type: string, value: x}
  - key: target
    type: descriptor
    descriptor:
      action: intent.action.MAIN
selector:
  action: intent.action.PICK
`

func TestUnmarshalYAML_Sample(t *testing.T) {
	d, err := UnmarshalYAML([]byte(sampleYAML))
	require.NoError(t, err)

	a, _ := d.Action()
	assert.Equal(t, intent.ActionView, a)
	u, ok := d.Data()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/item/1", u.String())
	assert.Equal(t, []string{"intent.category.BROWSABLE", intent.CategoryDefault}, d.Categories())
	c, ok := d.Component()
	require.True(t, ok)
	assert.Equal(t, intent.ComponentName{Package: "com.app", Class: "com.app.Viewer"}, c)
	assert.Equal(t, intent.FlagActivityNewTask, d.Flags())
	r, ok := d.SourceBounds()
	require.True(t, ok)
	assert.Equal(t, intent.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}, r)

	assert.Equal(t, int32(3), d.IntExtra("count", 0))
	assert.Equal(t, int64(9007199254740993), d.LongExtra("big", 0))
	assert.Equal(t, float32(0.5), d.FloatExtra("ratio", 0))
	assert.True(t, d.BoolExtra("enabled", false))
	tags, _ := d.StringSliceExtra("tags")
	assert.Equal(t, []string{"a", "b"}, tags)
	raw, _ := d.BytesExtra("raw")
	assert.Equal(t, []byte{0, 1, 255}, raw)
	nested, ok := d.ExtrasExtra("nested")
	require.True(t, ok)
	name, _ := nested.Get("name")
	assert.Equal(t, "x", name.String())
	target, ok := d.DescriptorExtra("target")
	require.True(t, ok)
	ta, _ := target.Action()
	assert.Equal(t, intent.ActionMain, ta)

	require.NotNil(t, d.Selector())
	sa, _ := d.Selector().Action()
	assert.Equal(t, "intent.action.PICK", sa)
	assert.Equal(t, []string{"count", "big", "ratio", "enabled", "tags", "raw", "nested", "target"}, d.Extras().Keys())
}

func TestYAMLAndJSONAgree(t *testing.T) {
	d, err := UnmarshalYAML([]byte(sampleYAML))
	require.NoError(t, err)

	js, err := MarshalJSON(d)
	require.NoError(t, err)
	fromJSON, err := UnmarshalJSON(js)
	require.NoError(t, err)
	assert.True(t, fromJSON.Equal(d), "json:\n%s", js)

	ys, err := MarshalYAML(d)
	require.NoError(t, err)
	fromYAML, err := UnmarshalYAML(ys)
	require.NoError(t, err)
	assert.True(t, fromYAML.Equal(d), "yaml:\n%s", ys)
}

func TestMarshalJSON_Shape(t *testing.T) {
	d := intent.NewAction("A")
	d.SetFlags(0x20)
	d.PutExtra("n", intent.Int(1))

	b, err := MarshalJSON(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"A","flags":"0x20","extras":[{"key":"n","type":"int","value":1}]}`, string(b))
}

func TestMarshalYAML_OmitsAbsentFields(t *testing.T) {
	b, err := MarshalYAML(intent.NewAction("A"))
	require.NoError(t, err)
	assert.Equal(t, "action: A\n", string(b))
}

func TestComponent_EdgeShapes(t *testing.T) {
	tests := []struct {
		comp intent.ComponentName
		text string
	}{
		{intent.ComponentName{Package: "com.app", Class: "com.app.Main"}, "com.app/.Main"},
		{intent.ComponentName{Package: "p", Class: ""}, "p/"},
		{intent.ComponentName{Package: "p", Class: ".X"}, "p/%2EX"},
		{intent.ComponentName{Package: "a/b", Class: "c"}, "a%2Fb/c"},
		{intent.ComponentName{}, "/"},
	}
	for _, tt := range tests {
		d := intent.NewAction("A")
		d.SetComponent(tt.comp)
		assert.Equal(t, tt.text, FromDescriptor(d).Component)

		for _, c := range []intent.Codec[[]byte]{YAMLCodec(), JSONCodec()} {
			b, err := c.Encode(context.Background(), d)
			require.NoError(t, err)
			back, err := c.Decode(context.Background(), b)
			require.NoError(t, err, string(b))
			got, ok := back.Component()
			require.True(t, ok)
			assert.Equal(t, tt.comp, got)
		}
	}
}

func TestDecode_EmptyData(t *testing.T) {
	d := intent.NewView("A", intent.ParseURI(""))
	b, err := MarshalYAML(d)
	require.NoError(t, err)
	back, err := UnmarshalYAML(b)
	require.NoError(t, err)
	assert.True(t, back.Equal(d), string(b))
}

func TestDecode_FlagsAsNumber(t *testing.T) {
	d, err := UnmarshalJSON([]byte(`{"flags": 16}`))
	require.NoError(t, err)
	assert.Equal(t, intent.Flags(16), d.Flags())

	d, err = UnmarshalYAML([]byte("flags: 16\n"))
	require.NoError(t, err)
	assert.Equal(t, intent.Flags(16), d.Flags())
}

func TestDecode_NonFiniteFloats(t *testing.T) {
	d := intent.New()
	d.PutExtra("inf", intent.Double(math.Inf(1)))
	d.PutExtra("nan", intent.Float(float32(math.NaN())))

	b, err := MarshalJSON(d)
	require.NoError(t, err)
	back, err := UnmarshalJSON(b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(back.DoubleExtra("inf", 0), 1))
	assert.True(t, math.IsNaN(float64(back.FloatExtra("nan", 0))))
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name  string
		yaml  string
		json  string
		code  string
		field string
	}{
		{
			name: "duplicate key",
			yaml: "action: a\naction: b\n",
			json: `{"action":"a","action":"b"}`,
			code: intent.CodeDuplicateKey, field: "action",
		},
		{
			name: "nested duplicate key",
			yaml: "selector:\n  type: a\n  type: b\n",
			json: `{"selector":{"type":"a","type":"b"}}`,
			code: intent.CodeDuplicateKey, field: "selector.type",
		},
		{
			name: "duplicate key in list item",
			yaml: "extras:\n  - {key: a, type: int, key: b}\n",
			json: `{"extras":[{"key":"a","type":"int","key":"b"}]}`,
			code: intent.CodeDuplicateKey, field: "extras[0].key",
		},
		{
			name: "unknown field",
			yaml: "action: a\nbogus: 1\n",
			json: `{"action":"a","bogus":1}`,
			code: intent.CodeUnknownKey,
		},
		{
			name: "unknown extra type",
			yaml: "extras:\n  - {key: a, type: matrix, value: 1}\n",
			json: `{"extras":[{"key":"a","type":"matrix","value":1}]}`,
			code: intent.CodeUnknownType, field: "extras[0].type",
		},
		{
			name: "duplicate extra key",
			yaml: "extras:\n  - {key: a, type: int, value: 1}\n  - {key: a, type: int, value: 2}\n",
			json: `{"extras":[{"key":"a","type":"int","value":1},{"key":"a","type":"int","value":2}]}`,
			code: intent.CodeDuplicateKey, field: "extras[1]",
		},
		{
			name: "int out of range",
			yaml: "extras:\n  - {key: a, type: int, value: 4294967296}\n",
			json: `{"extras":[{"key":"a","type":"int","value":4294967296}]}`,
			code: intent.CodeInvalidFormat, field: "extras[0].value",
		},
		{
			name: "selector with package",
			yaml: "package: p\nselector: {action: a}\n",
			json: `{"package":"p","selector":{"action":"a"}}`,
			code: intent.CodeInvalidFormat, field: "selector",
		},
		{
			name: "bad component",
			yaml: "component: nope\n",
			json: `{"component":"nope"}`,
			code: intent.CodeInvalidFormat, field: "component",
		},
		{
			name: "short bounds",
			yaml: "sourceBounds: [1, 2]\n",
			json: `{"sourceBounds":[1,2]}`,
			code: intent.CodeInvalidFormat, field: "sourceBounds",
		},
		{
			name: "empty",
			yaml: "",
			json: "  ",
			code: intent.CodeInvalidFormat,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name+"/yaml", func(t *testing.T) {
			_, err := UnmarshalYAML([]byte(tc.yaml))
			assertDecodeError(t, err, tc.code, tc.field)
		})
		t.Run(tc.name+"/json", func(t *testing.T) {
			_, err := UnmarshalJSON([]byte(tc.json))
			assertDecodeError(t, err, tc.code, tc.field)
		})
	}
}

func assertDecodeError(t *testing.T, err error, code, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, intent.ErrDecode), "got %v", err)
	de, ok := intent.AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, code, de.Code, "error: %v", err)
	if field != "" {
		assert.Equal(t, field, de.Field)
	}
}

func TestDecode_TrailingDocuments(t *testing.T) {
	_, err := UnmarshalYAML([]byte("action: a\n---\naction: b\n"))
	assertDecodeError(t, err, intent.CodeTrailingData, "")

	_, err = UnmarshalJSON([]byte(`{"action":"a"} {"action":"b"}`))
	assertDecodeError(t, err, intent.CodeTrailingData, "")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": YAML, "YML": YAML, "Json": JSON} {
		got, ok := ParseFormat(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseFormat("xml")
	assert.False(t, ok)
}

func TestCodecs(t *testing.T) {
	d := intent.Chooser(intent.NewView(intent.ActionView, intent.ParseURI("https://x")), "Open with")
	for name, c := range map[string]intent.Codec[[]byte]{"yaml": YAMLCodec(), "json": JSONCodec()} {
		t.Run(name, func(t *testing.T) {
			b, err := c.Encode(context.Background(), d)
			require.NoError(t, err)
			back, err := c.Decode(context.Background(), b)
			require.NoError(t, err)
			assert.True(t, back.Equal(d))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err = c.Encode(ctx, d)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

var (
	text     = rapid.StringMatching(`[a-zA-Z0-9 ._/:%-]{0,12}`)
	compName = rapid.OneOf(text, rapid.SampledFrom([]string{"", ".", ".X", "a/b", "/", "%2F", "p."}))
)

func genDescriptor(t *rapid.T, depth int) *intent.Descriptor {
	d := intent.New()
	if rapid.Bool().Draw(t, "hasAction") {
		d.SetAction(text.Draw(t, "action"))
	}
	switch rapid.IntRange(0, 4).Draw(t, "dataMode") {
	case 4:
		d.SetData(intent.ParseURI(""))
	case 1:
		d.SetData(intent.ParseURI(text.Draw(t, "data")))
	case 2:
		d.SetType(text.Draw(t, "type"))
	case 3:
		d.SetDataAndType(intent.ParseURI(text.Draw(t, "data")), text.Draw(t, "type"))
	}
	for _, c := range rapid.SliceOfN(text, 0, 3).Draw(t, "cats") {
		d.AddCategory(c)
	}
	d.SetFlags(intent.Flags(rapid.Uint32().Draw(t, "flags")))
	if rapid.Bool().Draw(t, "hasComp") {
		pkg, cls := compName.Draw(t, "cpkg"), compName.Draw(t, "ccls")
		if rapid.Bool().Draw(t, "inPkg") {
			cls = pkg + "." + cls
		}
		d.SetClassName(pkg, cls)
	}
	if rapid.Bool().Draw(t, "hasBounds") {
		d.SetSourceBounds(intent.Rect{
			Left: rapid.Int32().Draw(t, "l"), Top: rapid.Int32().Draw(t, "t"),
			Right: rapid.Int32().Draw(t, "r"), Bottom: rapid.Int32().Draw(t, "b"),
		})
	}
	if depth < 2 && rapid.IntRange(0, 3).Draw(t, "hasSel") == 0 {
		_ = d.SetSelector(genDescriptor(t, depth+1))
	} else if rapid.Bool().Draw(t, "hasPkg") {
		_ = d.SetPackage(text.Draw(t, "pkg"))
	}
	for _, k := range rapid.SliceOfN(text, 0, 4).Draw(t, "keys") {
		switch rapid.IntRange(0, 8).Draw(t, "kind") {
		case 0:
			d.PutExtra(k, intent.Bool(rapid.Bool().Draw(t, "b")))
		case 1:
			d.PutExtra(k, intent.Int(rapid.Int32().Draw(t, "i")))
		case 2:
			d.PutExtra(k, intent.Long(rapid.Int64().Draw(t, "l")))
		case 3:
			d.PutExtra(k, intent.Double(rapid.Float64Range(-1e300, 1e300).Draw(t, "d")))
		case 4:
			d.PutExtra(k, intent.String(text.Draw(t, "s")))
		case 5:
			d.PutExtra(k, intent.StringSlice(rapid.SliceOf(text).Draw(t, "ss")))
		case 6:
			d.PutExtra(k, intent.LongSlice(rapid.SliceOf(rapid.Int64()).Draw(t, "ls")))
		case 7:
			d.PutExtra(k, intent.Bytes(rapid.SliceOf(rapid.Byte()).Draw(t, "bs")))
		default:
			if depth < 2 {
				d.PutExtra(k, intent.DescriptorValue(genDescriptor(t, depth+1)))
			}
		}
	}
	return d
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDescriptor(t, 0)
		for _, f := range []Format{YAML, JSON} {
			c := docCodec{format: f}
			b, err := c.Encode(context.Background(), d)
			if err != nil {
				t.Fatalf("%s encode: %v", f, err)
			}
			back, err := c.Decode(context.Background(), b)
			if err != nil {
				t.Fatalf("%s decode: %v\n%s", f, err, b)
			}
			if !back.Equal(d) {
				t.Fatalf("%s round trip mismatch:\n in  %v\n out %v\n%s", f, d, back, b)
			}
		}
	})
}
