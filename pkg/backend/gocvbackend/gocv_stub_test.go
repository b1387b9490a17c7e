//go:build !gocv
// +build !gocv

package gocvbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/menta2k/focalcrop/pkg/backend"
)

func TestStubRegistersNothing(t *testing.T) {
	assert.False(t, Available())
	_, err := backend.Get(Name)
	assert.Error(t, err)
}
