package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	require.Equal(t, 512, p.Expansion.TargetSize)
	require.Equal(t, 1, p.Expansion.Augmentations)
	require.Equal(t, 512, p.Crop.Size)
	require.Equal(t, 10, p.Crop.Attempts)
	require.Equal(t, 0.0002, p.Crop.DefectThreshold)
	require.Equal(t, "_mask", p.MaskSuffix)
	require.EqualValues(t, 0, p.Seed)
	require.NoError(t, p.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), p)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
expansion:
  targetSize: 640
crop:
  attempts: 25
  defectThreshold: 0.01
seed: 42
`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 640, p.Expansion.TargetSize)
	require.Equal(t, 25, p.Crop.Attempts)
	require.Equal(t, 0.01, p.Crop.DefectThreshold)
	require.EqualValues(t, 42, p.Seed)

	// Untouched keys keep their defaults.
	require.Equal(t, 1, p.Expansion.Augmentations)
	require.Equal(t, 512, p.Crop.Size)
	require.Equal(t, "_mask", p.MaskSuffix)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("expansion: ["), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	broken := func(mutate func(*Profile)) *Profile {
		p := Default()
		mutate(p)
		return p
	}

	cases := map[string]*Profile{
		"zero target size":   broken(func(p *Profile) { p.Expansion.TargetSize = 0 }),
		"zero augmentations": broken(func(p *Profile) { p.Expansion.Augmentations = 0 }),
		"zero crop size":     broken(func(p *Profile) { p.Crop.Size = 0 }),
		"zero attempts":      broken(func(p *Profile) { p.Crop.Attempts = 0 }),
		"negative threshold": broken(func(p *Profile) { p.Crop.DefectThreshold = -0.1 }),
		"threshold above 1":  broken(func(p *Profile) { p.Crop.DefectThreshold = 1.5 }),
		"empty mask suffix":  broken(func(p *Profile) { p.MaskSuffix = "" }),
	}
	for name, p := range cases {
		require.Error(t, p.Validate(), name)
	}
}
