//go:build !windows
// +build !windows

package colors

import "fmt"

// enabled describes whether ANSI escape codes should be emitted.
var enabled = true

// EnableColor enables colorized output. Non-windows systems are known to support ANSI escape codes.
func EnableColor() {
	enabled = true
}

// DisableColor disables colorized output.
func DisableColor() {
	enabled = false
}

// Enabled returns whether colorized output is currently enabled.
func Enabled() bool {
	return enabled
}

// Colorize returns the string s wrapped in ANSI code c for non-windows systems
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
func Colorize(s any, c Color) string {
	if !enabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
