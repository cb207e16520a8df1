package document

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HexFlags is the flags bitmask. It is written as a "0x" hex string and read
// from either a number or a string with an optional base prefix.
type HexFlags uint32

func (f HexFlags) String() string { return "0x" + strconv.FormatUint(uint64(f), 16) }

func parseHexFlags(s string) (HexFlags, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, err
	}
	return HexFlags(v), nil
}

func (f HexFlags) MarshalYAML() (any, error) { return f.String(), nil }

func (f *HexFlags) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return &yaml.TypeError{Errors: []string{"line " + strconv.Itoa(n.Line) + ": flags must be a scalar"}}
	}
	v, err := parseHexFlags(n.Value)
	if err != nil {
		return &yaml.TypeError{Errors: []string{"line " + strconv.Itoa(n.Line) + ": flags " + strconv.Quote(n.Value) + " is not a 32-bit number"}}
	}
	*f = v
	return nil
}

func (f HexFlags) MarshalJSON() ([]byte, error) { return []byte(strconv.Quote(f.String())), nil }

func (f *HexFlags) UnmarshalJSON(b []byte) error {
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = u
	}
	v, err := parseHexFlags(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
