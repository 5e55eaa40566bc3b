package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hipotures/todoit/internal/ui"
)

var outputFormats = map[string]bool{
	"table":    true,
	"vertical": true,
	"json":     true,
	"yaml":     true,
	"xml":      true,
}

func validOutputFormat(f string) bool {
	return outputFormats[f]
}

// structuredOutput reports whether the active format bypasses human
// rendering and emits the raw payload
func structuredOutput() bool {
	switch outputFormat {
	case "json", "yaml", "xml":
		return true
	}
	return false
}

// jsonTree marshals v through its JSON tags into generic maps and
// slices, so yaml and xml output carry the same field names as json.
func jsonTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return tree, nil
}

// emitResult prints payload in the selected format. table renders the
// human table form; vertical the record-per-block form, falling back
// to table when nil.
func emitResult(payload any, table func() string, vertical func() string) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	case "yaml":
		tree, err := jsonTree(payload)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(tree)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, _ = os.Stdout.Write(data)
	case "xml":
		return writeXML(os.Stdout, "result", payload)
	case "vertical":
		if vertical != nil {
			fmt.Println(vertical())
			return nil
		}
		fallthrough
	default:
		fmt.Println(table())
	}
	return nil
}

// emitOK prints a one-line confirmation for human formats and the
// payload for structured ones. Mutating commands finish through here.
func emitOK(payload any, format string, args ...any) error {
	if structuredOutput() {
		return emitResult(payload, nil, nil)
	}
	fmt.Printf("%s %s\n", ui.RenderPass("✓"), fmt.Sprintf(format, args...))
	return nil
}
