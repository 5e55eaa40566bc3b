package types

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxKeyLength bounds list and item keys
	MaxKeyLength = 100
	// MaxContentLength bounds item content
	MaxContentLength = 1000
	// MaxPropertyValueLength bounds property values
	MaxPropertyValueLength = 2000
)

var (
	keyCharsRe       = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
	propertyKeyRe    = regexp.MustCompile(`^[A-Za-z0-9_\-.:]+$`)
	containsLetterRe = regexp.MustCompile(`[A-Za-z]`)
)

// reservedPropertyKeys collide with entity columns and cannot be used as
// property keys.
var reservedPropertyKeys = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"list_id":    true,
}

// scriptPatterns are case-insensitive substrings rejected in property
// values to keep stored text inert when rendered in a browser.
var scriptPatterns = []string{
	"<script>",
	"javascript:",
	"onload=",
	"onerror=",
	"onclick=",
	"onmouseover=",
}

// htmlSafelist is the set of tags allowed to appear in property values
var htmlSafelist = map[string]bool{
	"b": true, "i": true, "u": true,
	"em": true, "strong": true, "br": true, "p": true,
}

var htmlTagRe = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)

// ValidateListKey checks a list key: allowed characters, bounded length,
// and at least one letter. The letter rule keeps keys distinguishable
// from numeric IDs in lookups.
func ValidateListKey(key string) error {
	if key == "" {
		return fmt.Errorf("list key is required")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("list key must be %d characters or less (got %d)", MaxKeyLength, len(key))
	}
	if !keyCharsRe.MatchString(key) {
		return fmt.Errorf("list key %q may only contain letters, digits, underscore and hyphen", key)
	}
	if !containsLetterRe.MatchString(key) {
		return fmt.Errorf("list key %q must contain at least one letter", key)
	}
	return nil
}

// ValidateItemKey checks an item key's characters and length
func ValidateItemKey(key string) error {
	if key == "" {
		return fmt.Errorf("item key is required")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("item key must be %d characters or less (got %d)", MaxKeyLength, len(key))
	}
	if !keyCharsRe.MatchString(key) {
		return fmt.Errorf("item key %q may only contain letters, digits, underscore and hyphen", key)
	}
	return nil
}

// ValidatePropertyKey checks a property key against the allowed character
// class and the reserved set
func ValidatePropertyKey(key string) error {
	if key == "" {
		return fmt.Errorf("property key is required")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("property key must be %d characters or less (got %d)", MaxKeyLength, len(key))
	}
	if !propertyKeyRe.MatchString(key) {
		return fmt.Errorf("property key %q may only contain letters, digits, and _-.:", key)
	}
	if reservedPropertyKeys[strings.ToLower(key)] {
		return fmt.Errorf("property key %q is reserved", key)
	}
	return nil
}

// ValidatePropertyValue checks length and rejects script-injection
// patterns and HTML tags outside the safelist
func ValidatePropertyValue(value string) error {
	if len(value) > MaxPropertyValueLength {
		return fmt.Errorf("property value must be %d characters or less (got %d)", MaxPropertyValueLength, len(value))
	}
	lower := strings.ToLower(value)
	for _, pattern := range scriptPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("property value contains disallowed pattern %q", pattern)
		}
	}
	for _, m := range htmlTagRe.FindAllStringSubmatch(value, -1) {
		if !htmlSafelist[strings.ToLower(m[1])] {
			return fmt.Errorf("property value contains disallowed HTML tag <%s>", m[1])
		}
	}
	return nil
}

// ValidateCompletionStates checks that every state value is a bool or a
// string. Other kinds are rejected rather than coerced.
func ValidateCompletionStates(states map[string]any) error {
	for k, v := range states {
		if k == "" {
			return fmt.Errorf("completion state name is required")
		}
		switch v.(type) {
		case bool, string:
		default:
			return fmt.Errorf("completion state %q must be a bool or string (got %T)", k, v)
		}
	}
	return nil
}
