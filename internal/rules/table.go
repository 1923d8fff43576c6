// Package rules loads the simulation rule table and maps it once into a
// typed domain.RuleBook.
package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of date values in the rule table.
const DateLayout = "2006-01-02"

// ErrMalformedValue is returned when a present key holds a value of the wrong shape.
var ErrMalformedValue = errors.New("malformed rule table value")

// Table is a flat view of the rule table: lower-case dotted keys to scalar values.
type Table map[string]any

// Load reads a YAML or JSON rule table from path.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON document and flattens it.
func Parse(data []byte) (Table, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode rule table: %w", err)
	}
	return Flatten(doc), nil
}

// Flatten joins nested keys with dots. List items are addressed as key[i].
func Flatten(doc map[string]any) Table {
	t := make(Table)
	for k, v := range doc {
		flattenInto(t, strings.ToLower(k), v)
	}
	return t
}

func flattenInto(t Table, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flattenInto(t, prefix+"."+strings.ToLower(k), child)
		}
	case map[any]any:
		for k, child := range val {
			flattenInto(t, prefix+"."+strings.ToLower(fmt.Sprint(k)), child)
		}
	case []any:
		for i, child := range val {
			flattenInto(t, fmt.Sprintf("%s[%d]", prefix, i), child)
		}
	default:
		t[prefix] = v
	}
}

// Keys returns every key in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Has reports whether key is present with a non-nil value.
func (t Table) Has(key string) bool {
	v, ok := t[key]
	return ok && v != nil
}

// Decimal returns the numeric value at key. ok is false when the key is absent.
func (t Table) Decimal(key string) (d decimal.Decimal, ok bool, err error) {
	if !t.Has(key) {
		return decimal.Zero, false, nil
	}

	switch v := t[key].(type) {
	case int:
		return decimal.NewFromInt(int64(v)), true, nil
	case int64:
		return decimal.NewFromInt(v), true, nil
	case uint64:
		return decimal.NewFromUint64(v), true, nil
	case float64:
		return decimal.NewFromFloat(v), true, nil
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
		if err != nil {
			return decimal.Zero, true, fmt.Errorf("%w: %s=%q", ErrMalformedValue, key, v)
		}
		return d, true, nil
	default:
		return decimal.Zero, true, fmt.Errorf("%w: %s has type %T", ErrMalformedValue, key, v)
	}
}

// Int returns the integer value at key.
func (t Table) Int(key string) (n int, ok bool, err error) {
	if !t.Has(key) {
		return 0, false, nil
	}

	switch v := t[key].(type) {
	case int:
		return v, true, nil
	case float64:
		return int(v), true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, true, fmt.Errorf("%w: %s=%q", ErrMalformedValue, key, v)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%w: %s has type %T", ErrMalformedValue, key, v)
	}
}

// Text returns the value at key as lower-case text.
func (t Table) Text(key string) (s string, ok bool) {
	if !t.Has(key) {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(t[key]))), true
}

// Bool accepts yes/no, true/false and y/n.
func (t Table) Bool(key string) (b bool, ok bool, err error) {
	if !t.Has(key) {
		return false, false, nil
	}

	if v, isBool := t[key].(bool); isBool {
		return v, true, nil
	}

	s, _ := t.Text(key)
	switch s {
	case "yes", "y", "true":
		return true, true, nil
	case "no", "n", "false":
		return false, true, nil
	}
	return false, true, fmt.Errorf("%w: %s=%q", ErrMalformedValue, key, s)
}

// Date returns the date at key, accepting decoded timestamps or YYYY-MM-DD text.
func (t Table) Date(key string) (d time.Time, ok bool, err error) {
	if !t.Has(key) {
		return time.Time{}, false, nil
	}

	switch v := t[key].(type) {
	case time.Time:
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), true, nil
	case string:
		d, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, true, fmt.Errorf("%w: %s=%q", ErrMalformedValue, key, v)
		}
		return d, true, nil
	default:
		return time.Time{}, true, fmt.Errorf("%w: %s has type %T", ErrMalformedValue, key, v)
	}
}

// Format renders the value at key for display.
func (t Table) Format(key string) string {
	switch v := t[key].(type) {
	case time.Time:
		return v.Format(DateLayout)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
