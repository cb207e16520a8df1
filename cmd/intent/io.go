package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	intent "github.com/reoring/intent"
	"github.com/reoring/intent/document"
	"github.com/reoring/intent/parcel"
	"github.com/reoring/intent/uriform"
)

const (
	formatAuto   = "auto"
	formatURI    = "uri"
	formatBinary = "binary"
	formatYAML   = "yaml"
	formatJSON   = "json"
)

// base64 of the record magic "INTD"
var base64Magic = []byte("SU5UR")

// uriEnd closes every URI-form descriptor.
var uriEnd = []byte(";end")

// trimLine drops the line terminator a shell or editor leaves after a URI.
// Any other whitespace may belong to the data.
func trimLine(b []byte) []byte { return bytes.TrimRight(b, "\r\n") }

// detectFormat guesses the encoding of b. URI data may itself span lines, so
// the URI form is recognized by its marker and closing token.
func detectFormat(b []byte) string {
	t := bytes.TrimSpace(b)
	u := trimLine(b)
	switch {
	case bytes.HasPrefix(b, parcel.Magic[:]), bytes.HasPrefix(t, base64Magic):
		return formatBinary
	case bytes.Contains(u, []byte(uriform.Marker)) && bytes.HasSuffix(u, uriEnd):
		return formatURI
	case bytes.HasPrefix(t, []byte("{")):
		return formatJSON
	}
	return formatYAML
}

func (a *app) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(a.in)
	}
	return os.ReadFile(path)
}

func (a *app) readDescriptor(ctx context.Context, path, from string) (*intent.Descriptor, error) {
	b, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	if from == "" || from == formatAuto {
		from = detectFormat(b)
	}
	a.log.Debug("decoding descriptor", "source", displayPath(path), "format", from, "bytes", len(b))

	var d *intent.Descriptor
	switch from {
	case formatURI:
		d, err = uriform.Codec(0).Decode(ctx, string(trimLine(b)))
	case formatBinary:
		if t := bytes.TrimSpace(b); bytes.HasPrefix(t, base64Magic) {
			raw, derr := base64.StdEncoding.DecodeString(string(t))
			if derr != nil {
				return nil, fmt.Errorf("%s: base64: %w", displayPath(path), derr)
			}
			b = raw
		}
		d, err = parcel.Codec(parcel.Options{}).Decode(ctx, b)
	case formatYAML:
		d, err = document.YAMLCodec().Decode(ctx, b)
	case formatJSON:
		d, err = document.JSONCodec().Decode(ctx, b)
	default:
		return nil, fmt.Errorf("unknown input format %q", from)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayPath(path), err)
	}
	return d, nil
}

func (a *app) writeDescriptor(ctx context.Context, d *intent.Descriptor, format string) error {
	var out []byte
	var err error
	switch format {
	case formatURI:
		var s string
		s, err = uriform.Codec(0).Encode(ctx, d)
		out = []byte(s + "\n")
	case formatBinary:
		out, err = parcel.Codec(parcel.Options{}).Encode(ctx, d)
		if err == nil && a.base64 {
			out = []byte(base64.StdEncoding.EncodeToString(out) + "\n")
		}
	case formatYAML:
		out, err = document.YAMLCodec().Encode(ctx, d)
	case formatJSON:
		out, err = document.JSONCodec().Encode(ctx, d)
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = a.out.Write(out)
	return err
}

func displayPath(p string) string {
	if p == "" || p == "-" {
		return "<stdin>"
	}
	return p
}
