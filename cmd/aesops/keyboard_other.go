//go:build !linux && !darwin

package main

// enableCbreak is a no-op here; keys arrive after Enter.
func enableCbreak(int) (func(), error) {
	return func() {}, nil
}
