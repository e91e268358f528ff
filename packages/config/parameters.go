package config

import (
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/pflag"
)

// DefineParameters registers a flag for every field of the struct that parameters points to. The flag name is the
// prefix followed by the lower camel case field name (or the "name" tag) and nested structs extend the prefix. The
// "default" and "usage" tags provide the flag defaults.
func DefineParameters(flagSet *pflag.FlagSet, parameters interface{}, prefix string) {
	val := reflect.ValueOf(parameters).Elem()
	for i := 0; i < val.NumField(); i++ {
		valueField := val.Field(i)
		typeField := val.Type().Field(i)

		name := typeField.Tag.Get("name")
		if name == "" {
			name = lowerCamelCase(typeField.Name)
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		defaultValue := typeField.Tag.Get("default")
		usage := typeField.Tag.Get("usage")
		valueAddr := valueField.Addr().Interface()

		switch valueField.Interface().(type) {
		case bool:
			flagSet.BoolVar(valueAddr.(*bool), name, mustParse(strconv.ParseBool, defaultValue, false), usage)
		case int:
			flagSet.IntVar(valueAddr.(*int), name, mustParse(strconv.Atoi, defaultValue, 0), usage)
		case string:
			flagSet.StringVar(valueAddr.(*string), name, defaultValue, usage)
		case time.Duration:
			flagSet.DurationVar(valueAddr.(*time.Duration), name, mustParse(time.ParseDuration, defaultValue, 0), usage)
		case []string:
			var defaultSlice []string
			if defaultValue != "" {
				defaultSlice = strings.Split(defaultValue, ",")
			}
			flagSet.StringSliceVar(valueAddr.(*[]string), name, defaultSlice, usage)
		default:
			if valueField.Kind() == reflect.Struct {
				DefineParameters(flagSet, valueAddr, name)
			}
		}
	}
}

func mustParse[T any](parse func(string) (T, error), value string, fallback T) T {
	if value == "" {
		return fallback
	}

	parsed, err := parse(value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func lowerCamelCase(str string) string {
	runes := []rune(str)
	runeCount := len(runes)

	if runeCount == 0 || unicode.IsLower(runes[0]) {
		return str
	}

	runes[0] = unicode.ToLower(runes[0])
	if runeCount == 1 || unicode.IsLower(runes[1]) {
		return string(runes)
	}

	for i := 1; i < runeCount; i++ {
		if i+1 < runeCount && unicode.IsLower(runes[i+1]) {
			break
		}

		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}
