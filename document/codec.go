package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	intent "github.com/reoring/intent"
)

// MarshalYAML renders d as a YAML document with two-space indentation.
func MarshalYAML(d *intent.Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromDescriptor(d)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a single YAML document.
func UnmarshalYAML(b []byte) (*intent.Descriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, docError(intent.CodeInvalidFormat, "", "empty document")
		}
		return nil, &intent.DecodeError{Code: intent.CodeInvalidFormat, Offset: -1, Message: "malformed YAML", Cause: err}
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, docError(intent.CodeTrailingData, "", "more than one YAML document")
	}
	if err := checkYAMLKeys(&root, ""); err != nil {
		return nil, err
	}

	strict := yaml.NewDecoder(bytes.NewReader(b))
	strict.KnownFields(true)
	var doc Document
	if err := strict.Decode(&doc); err != nil {
		return nil, yamlError(err)
	}
	return doc.Descriptor()
}

func yamlError(err error) error {
	code := intent.CodeInvalidFormat
	var te *yaml.TypeError
	if errors.As(err, &te) {
		for _, msg := range te.Errors {
			if strings.Contains(msg, "not found in type") {
				code = intent.CodeUnknownKey
				break
			}
		}
	}
	return &intent.DecodeError{Code: code, Offset: -1, Message: "invalid YAML document", Cause: err}
}

// MarshalJSON renders d as an indented JSON document.
func MarshalJSON(d *intent.Descriptor) ([]byte, error) {
	return json.MarshalIndent(FromDescriptor(d), "", "  ")
}

// UnmarshalJSON decodes a single JSON document.
func UnmarshalJSON(b []byte) (*intent.Descriptor, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, docError(intent.CodeInvalidFormat, "", "empty document")
	}
	if err := checkJSONKeys(b); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		code := intent.CodeInvalidFormat
		if strings.Contains(err.Error(), "unknown field") {
			code = intent.CodeUnknownKey
		}
		return nil, &intent.DecodeError{Code: code, Offset: -1, Message: "invalid JSON document", Cause: err}
	}
	if dec.More() {
		return nil, docError(intent.CodeTrailingData, "", "more than one JSON value")
	}
	return doc.Descriptor()
}

// Format selects a document encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" and "json", case-insensitively.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return YAML, true
	case "json":
		return JSON, true
	}
	return "", false
}

// YAMLCodec returns the YAML document form as an intent.Codec.
func YAMLCodec() intent.Codec[[]byte] { return docCodec{format: YAML} }

// JSONCodec returns the JSON document form as an intent.Codec.
func JSONCodec() intent.Codec[[]byte] { return docCodec{format: JSON} }

type docCodec struct{ format Format }

func (c docCodec) Encode(ctx context.Context, d *intent.Descriptor) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.format == JSON {
		return MarshalJSON(d)
	}
	return MarshalYAML(d)
}

func (c docCodec) Decode(ctx context.Context, b []byte) (*intent.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.format == JSON {
		return UnmarshalJSON(b)
	}
	return UnmarshalYAML(b)
}
