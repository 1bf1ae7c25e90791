package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsThetaBelowOne(t *testing.T) {
	c := Default()
	c.Theta = 0
	assert.Error(t, c.Validate())
}

func TestValidateRejectsNegativeWorkers(t *testing.T) {
	c := Default()
	c.NumWorkers = -1
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownOrdering(t *testing.T) {
	c := Default()
	c.Ordering = "bogus"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	c := Default()
	c.Mode = "SIDEWAYS"
	assert.Error(t, c.Validate())
}

func TestFindProjectRootWalksUpToConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, configFileName), []byte("theta: 2\n"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { require.NoError(t, os.Chdir(cwd)) }()
	require.NoError(t, os.Chdir(nested))

	found, err := FindProjectRoot()
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindProjectRootErrorsWhenNoConfigExists(t *testing.T) {
	root := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { require.NoError(t, os.Chdir(cwd)) }()
	require.NoError(t, os.Chdir(root))

	_, err = FindProjectRoot()
	assert.Error(t, err)
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, configFileName), []byte("theta: 3\n"), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Theta)
	assert.Equal(t, OrderingOptimal, cfg.Ordering) // from Default()
	assert.Equal(t, ModeDepth, cfg.Mode)
	assert.InDelta(t, 0.1, cfg.InitialPadding, 1e-9)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, configFileName), []byte("theta: 0\n"), 0o644))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestLoadErrorsWhenFileMissing(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root)
	assert.Error(t, err)
}
