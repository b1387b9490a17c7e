//go:build !gocv
// +build !gocv

// Package gocvbackend implements the analysis primitives with OpenCV. Without
// the gocv build tag nothing is registered.
package gocvbackend

// Name is the registry name of this backend
const Name = "gocv"

// Available reports whether the backend was compiled in
func Available() bool { return false }
