package canvas

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var pathParamPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// ExpandPath substitutes each {name} segment of template with the escaped
// value of values[name]. Unknown segments are left in place.
func ExpandPath(template string, values map[string]any) string {
	return pathParamPattern.ReplaceAllStringFunc(template, func(seg string) string {
		name := seg[1 : len(seg)-1]
		v, ok := values[name]
		if !ok || v == nil {
			return seg
		}
		return url.PathEscape(stringify(v))
	})
}

// AddValue encodes v under name. Slices add one entry per element, nil
// values are skipped.
func AddValue(values url.Values, name string, v any) {
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		v = rv.Elem().Interface()
		rv = rv.Elem()
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < rv.Len(); i++ {
			values.Add(name, stringify(rv.Index(i).Interface()))
		}
		return
	}
	values.Add(name, stringify(v))
}

// Default returns d when v is nil.
func Default(v, d any) any {
	if v == nil {
		return d
	}
	return v
}

func stringify(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Time:
		return t.Format(time.RFC3339)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// iso8601 matches timestamps such as 2024-01-31T12:00:00Z or
// 2024-01-31T12:00:00+02:00.
var iso8601 = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})([+-](\d{2}):(\d{2})|Z)`)

// ValidateEnum checks that value, or every element of value when it is a
// slice, is one of allowed. Nil passes.
func ValidateEnum(value any, allowed []string) error {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if err := ValidateEnum(rv.Index(i).Interface(), allowed); err != nil {
				return err
			}
		}
		return nil
	}
	s := stringify(value)
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return &ValidationError{Value: value, Reason: "not in [" + strings.Join(allowed, ", ") + "]"}
}

// ValidateISO8601 checks that value is a time.Time or a string in ISO 8601
// format. Nil passes.
func ValidateISO8601(value any) error {
	switch v := value.(type) {
	case nil, time.Time, *time.Time:
		return nil
	case string:
		if iso8601.MatchString(v) {
			return nil
		}
	}
	return &ValidationError{Value: value, Reason: "must be in ISO8601 format"}
}
