package colorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForLabel(t *testing.T) {
	assert.Equal(t, Blue, ForLabel("course_menu"))
	assert.Equal(t, Red, ForLabel("leave_session"))
	assert.Equal(t, Grey, ForLabel("unmatched"))
	assert.Equal(t, Purple, ForLabel("quiz_popup"))
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#2C3E50", Hex(Slate))
	assert.Equal(t, "#E74C3C", Hex(Red))
}
