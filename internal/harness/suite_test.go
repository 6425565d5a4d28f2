package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDir_TestdataPasses(t *testing.T) {
	suite, err := New(nil).RunDir(context.Background(), filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)

	assert.Equal(t, 4, suite.Total)
	assert.Equal(t, 4, suite.Passed)
	assert.Zero(t, suite.Failed)
	assert.Empty(t, suite.Failures)
	require.Len(t, suite.Results, 4)
	assert.Equal(t, "invariant", suite.Results[0].Name)
}

func TestRunDir_CollectsFailures(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", "name: good\ndescription: ok\nstatements: [a causes p]\nexpect: {fluents: [p]}\n")
	writeScenario(t, dir, "b.yaml", "name: bad\ndescription: wrong fluents\nstatements: [a causes p]\nexpect: {fluents: [q]}\n")

	suite, err := New(nil).RunDir(context.Background(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, 2, suite.Total)
	assert.Equal(t, 1, suite.Passed)
	assert.Equal(t, 1, suite.Failed)
	require.Len(t, suite.Failures, 1)
	assert.Equal(t, "bad", suite.Failures[0].Name)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), suite.Failures[0].Path)
	assert.NotEmpty(t, suite.Failures[0].Errors)
}

func TestRunDir_Empty(t *testing.T) {
	_, err := New(nil).RunDir(context.Background(), t.TempDir(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenarios found")
}

func TestRunDir_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).RunDir(ctx, filepath.Join("testdata", "scenarios"), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDir_Filter(t *testing.T) {
	suite, err := New(nil).RunDir(context.Background(), filepath.Join("testdata", "scenarios"), "t*")
	require.NoError(t, err)

	assert.Equal(t, 1, suite.Total)
	require.Len(t, suite.Results, 1)
	assert.Equal(t, "toggle", suite.Results[0].Name)
}

func TestRunDir_BadFilter(t *testing.T) {
	_, err := New(nil).RunDir(context.Background(), filepath.Join("testdata", "scenarios"), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}
