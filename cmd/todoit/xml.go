package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// writeXML renders a payload as XML. encoding/xml cannot marshal maps,
// and metadata and completion states are maps, so the payload goes
// through its JSON form and an element tree is emitted from that.
func writeXML(w io.Writer, root string, v any) error {
	tree, err := jsonTree(v)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := encodeXMLValue(enc, root, tree); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

func encodeXMLValue(enc *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: xmlName(name)}}

	switch t := v.(type) {
	case map[string]any:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeXMLValue(enc, k, t[k]); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())

	case []any:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, item := range t {
			if err := encodeXMLValue(enc, "item", item); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())

	default:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if t != nil {
			if err := enc.EncodeToken(xml.CharData(xmlScalar(t))); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	}
}

func xmlScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		// JSON numbers arrive as float64; keep integers undecorated
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// xmlName coerces arbitrary keys into valid element names
func xmlName(s string) string {
	if s == "" {
		return "value"
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		ok := r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		out = append(out, r)
	}
	// Element names cannot begin with a digit, hyphen or dot
	if (out[0] >= '0' && out[0] <= '9') || out[0] == '-' || out[0] == '.' {
		return "_" + string(out)
	}
	return string(out)
}
