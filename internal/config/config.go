// Package config loads optional YAML pipeline profiles. A profile captures
// the tunables of a processing run so a whole dataset series can be rebuilt
// with the same parameters. Flags set explicitly on the command line always
// win over profile values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the parameters of the expand-crop-validate pipeline.
type Profile struct {
	Expansion struct {
		// TargetSize is the canvas floor per axis; images already at or
		// above it on an axis are not padded there.
		TargetSize int `yaml:"targetSize"`

		// Augmentations is how many expanded variants are drawn per pair.
		Augmentations int `yaml:"augmentations"`
	} `yaml:"expansion"`

	Crop struct {
		// Size is the side length of the square samples.
		Size int `yaml:"size"`

		// Attempts is how many random crops are tried per expanded variant.
		Attempts int `yaml:"attempts"`

		// DefectThreshold is the minimum defect-pixel ratio a crop must
		// reach to be kept.
		DefectThreshold float64 `yaml:"defectThreshold"`
	} `yaml:"crop"`

	// MaskSuffix is inserted between base name and extension to locate a
	// companion mask.
	MaskSuffix string `yaml:"maskSuffix"`

	// Seed fixes the random source; 0 means derive one from the clock.
	Seed int64 `yaml:"seed"`
}

// Default returns a profile with the standard parameters of the pipeline.
func Default() *Profile {
	p := &Profile{}
	p.Expansion.TargetSize = 512
	p.Expansion.Augmentations = 1
	p.Crop.Size = 512
	p.Crop.Attempts = 10
	p.Crop.DefectThreshold = 0.0002
	p.MaskSuffix = "_mask"
	return p
}

// Load reads a YAML profile from path on top of the defaults. A missing
// file is not an error: the defaults are returned unchanged.
func Load(path string) (*Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("profile %s does not exist", path)
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// Validate fails fast on values that would make the pipeline misbehave.
func (p *Profile) Validate() error {
	if p.Expansion.TargetSize < 1 {
		return fmt.Errorf("expansion target size must be >= 1, got %d", p.Expansion.TargetSize)
	}
	if p.Expansion.Augmentations < 1 {
		return fmt.Errorf("augmentations must be >= 1, got %d", p.Expansion.Augmentations)
	}
	if p.Crop.Size < 1 {
		return fmt.Errorf("crop size must be >= 1, got %d", p.Crop.Size)
	}
	if p.Crop.Attempts < 1 {
		return fmt.Errorf("crop attempts must be >= 1, got %d", p.Crop.Attempts)
	}
	if p.Crop.DefectThreshold < 0 || p.Crop.DefectThreshold > 1 {
		return fmt.Errorf("defect threshold must be in [0, 1], got %f", p.Crop.DefectThreshold)
	}
	if p.MaskSuffix == "" {
		return fmt.Errorf("mask suffix must not be empty")
	}
	return nil
}
