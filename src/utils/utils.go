package utils

import (
	"fmt"
	"path/filepath"
	"reflect"

	"git.handmade.network/hmn/pngscope/src/oops"
)

// Returns the provided value, or a default value if the input was zero.
func OrDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	} else {
		return v
	}
}

func IntMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func IntClamp(min, t, max int) int {
	return IntMax(min, IntMin(t, max))
}

/*
Panics if err is a non-nil error. Typed nil pointers count as nil, so functions
returning a concrete error type can be passed directly.
*/
func Must(err any) {
	if isNonNilError(err) {
		panic(err)
	}
}

func Must1[T any](v T, err any) T {
	Must(err)
	return v
}

func Must2[T1, T2 any](v1 T1, v2 T2, err any) (T1, T2) {
	Must(err)
	return v1, v2
}

func isNonNilError(err any) bool {
	if err == nil {
		return false
	}
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return false
	}
	_, isErr := err.(error)
	return isErr
}

/*
Recover a panic and convert it to a returned error. Call it like so:

	func MyFunc() (err error) {
		defer utils.RecoverPanicAsError(&err)
	}

If an error was already present, the panicked error will take precedence. Unfortunately there's
no good way to include both errors because you can't really have two chains of errors and still
play nice with the standard library's Unwrap behavior. But most of the time this shouldn't be an
issue, since the panic will probably occur before a meaningful error value was set.
*/
func RecoverPanicAsError(err *error) {
	if r := recover(); r != nil {
		var recoveredErr error
		if rerr, ok := r.(error); ok {
			recoveredErr = rerr
		} else if *err != nil {
			recoveredErr = fmt.Errorf("panic with value: %v (previous error: %w)", r, *err)
		} else {
			recoveredErr = fmt.Errorf("panic with value: %v", r)
		}
		*err = oops.New(recoveredErr, "panic recovered as error")
	}
}

// Absolute path for display and storage; falls back to the input on failure.
func AbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
