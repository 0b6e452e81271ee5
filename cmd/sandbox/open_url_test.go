package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenURLRejectsSchemes(t *testing.T) {
	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "smile", "%zz"} {
		assert.Error(t, openURL(raw), raw)
	}
}
