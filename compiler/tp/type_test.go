package tp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "double", String(Double))
	assert.Equal(t, "i1", String(Bool))
	assert.Equal(t, "double (double, double)", String(Func{In: []Type{Double, Double}, Out: Double}))
	assert.Equal(t, "double ()", String(Func{Out: Double}))
}

func TestSize(t *testing.T) {
	assert.Equal(t, 8, Double.Size())
	assert.Equal(t, 1, Bool.Size())
}
