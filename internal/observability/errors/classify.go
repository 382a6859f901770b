// Package errors turns arbitrary errors into low-cardinality tag values.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
)

// Classify returns a normalized error class for tagging metrics and logs.
// Social auth codes win, then session-store codes, then the innermost concrete type name.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if sae, ok := autherrors.As(err); ok {
		return strings.ToLower(string(sae.Code))
	}
	if code := autherrors.StoreCodeOf(err); code != "" {
		return "store_" + string(code)
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
