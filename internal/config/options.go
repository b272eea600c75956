package config

import (
	"strings"

	"github.com/spf13/cast"
)

// Options holds free-form parser settings. Keys match case-insensitively
// since viper lowercases map keys. Accessors fall back to their default when
// a key is missing or its value does not convert.
type Options map[string]any

func (o Options) get(key string) (any, bool) {
	if v, ok := o[key]; ok {
		return v, true
	}
	for k, v := range o {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func option[T any](o Options, key string, def T, conv func(any) (T, error)) T {
	v, ok := o.get(key)
	if !ok {
		return def
	}
	out, err := conv(v)
	if err != nil {
		return def
	}
	return out
}

func (o Options) String(key, def string) string {
	return option(o, key, def, cast.ToStringE)
}

func (o Options) Bool(key string, def bool) bool {
	return option(o, key, def, cast.ToBoolE)
}

// Int accepts the float64 of JSON and the int of YAML alike.
func (o Options) Int(key string, def int) int {
	return option(o, key, def, cast.ToIntE)
}

// Rune returns the first rune of the string value.
func (o Options) Rune(key string, def rune) rune {
	if s := o.String(key, ""); s != "" {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns the string-valued entries of an object value. Entries
// of other types are dropped.
func (o Options) StringMap(key string) map[string]string {
	out := map[string]string{}
	v, _ := o.get(key)
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return out
	}
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
