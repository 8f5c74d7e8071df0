package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGender_Valid(t *testing.T) {
	for _, g := range []Gender{GenderMale, GenderFemale, GenderDivers} {
		assert.True(t, g.Valid(), g)
	}
	for _, g := range []Gender{"", "Male", "other"} {
		assert.False(t, g.Valid(), g)
	}
}
