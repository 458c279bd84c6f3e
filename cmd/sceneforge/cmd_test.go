package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sceneforge/internal/types"
)

func TestFailedUnitsErr(t *testing.T) {
	ok := &types.RunSummary{Completed: 3}
	assert.NoError(t, failedUnitsErr(ok))

	bad := &types.RunSummary{Completed: 2, Failed: 1}
	err := failedUnitsErr(bad)
	assert.Error(t, err, "failed units must surface as a non-zero exit")
	assert.Contains(t, err.Error(), "1 of 3 units failed")
}
