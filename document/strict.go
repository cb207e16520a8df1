package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	intent "github.com/reoring/intent"
)

// checkYAMLKeys walks the node tree and fails on the first mapping key that
// appears twice, reporting both positions.
func checkYAMLKeys(n *yaml.Node, path string) error {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if err := checkYAMLKeys(c, path); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			at := join(path, k.Value)
			if pos, dup := first[k.Value]; dup {
				return docError(intent.CodeDuplicateKey, at, "duplicate key %q at %d:%d (first at %d:%d)", k.Value, k.Line, k.Column, pos[0], pos[1])
			}
			first[k.Value] = [2]int{k.Line, k.Column}
			if err := checkYAMLKeys(v, at); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			if err := checkYAMLKeys(c, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	}
	return nil
}

type jsonFrame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
	key          string
	index        int
}

func jsonPath(stack []jsonFrame) string {
	var b bytes.Buffer
	for _, f := range stack {
		if f.object {
			if f.expectingKey {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(f.key)
			continue
		}
		fmt.Fprintf(&b, "[%d]", f.index)
	}
	return b.String()
}

// checkJSONKeys streams the first value of b and fails on the first object key
// that appears twice within the same object. It also rejects malformed JSON.
func checkJSONKeys(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var stack []jsonFrame

	beginValue := func() {
		if n := len(stack); n > 0 && !stack[n-1].object {
			stack[n-1].index++
		}
	}
	endValue := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectingKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &intent.DecodeError{Code: intent.CodeInvalidFormat, Field: jsonPath(stack), Offset: -1, Message: "malformed JSON", Cause: err}
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				beginValue()
				stack = append(stack, jsonFrame{object: true, keys: map[string]struct{}{}, expectingKey: true})
			case '[':
				beginValue()
				stack = append(stack, jsonFrame{index: -1})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				endValue()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectingKey {
				top := &stack[n-1]
				if _, dup := top.keys[v]; dup {
					top.key = v
					top.expectingKey = false
					return docError(intent.CodeDuplicateKey, jsonPath(stack), "duplicate key %q", v)
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.expectingKey = false
				continue
			}
			beginValue()
			endValue()
		default:
			beginValue()
			endValue()
		}
		if len(stack) == 0 {
			// Later values are left to the decoder's trailing-data check.
			return nil
		}
	}
}
