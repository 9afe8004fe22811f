package contracts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// TestOSCArgValue verifies each argument kind yields its wire value.
func TestOSCArgValue(t *testing.T) {
	assert.Equal(t, int32(42), contracts.IntArg(42).Value())
	assert.Equal(t, float32(0.75), contracts.FloatArg(0.75).Value())
	assert.Equal(t, "main", contracts.StringArg("main").Value())
	assert.Equal(t, true, contracts.BoolArg(true).Value())
}

// TestNormalizedArgScaling verifies ranged arguments scale into 0-1 on send.
func TestNormalizedArgScaling(t *testing.T) {
	assert.Equal(t, float32(0.5), contracts.NormalizedArg(5, 0, 10).Value())
	assert.Equal(t, float32(0), contracts.NormalizedArg(0, 0, 10).Value())
	assert.Equal(t, float32(1), contracts.NormalizedArg(10, 0, 10).Value())
	assert.Equal(t, float32(0.25), contracts.NormalizedArg(-5, -10, 10).Value())

	// Degenerate range must not divide by zero.
	assert.Equal(t, float32(0), contracts.NormalizedArg(3, 3, 3).Value())
}
