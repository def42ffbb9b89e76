package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultMinKotlin is used when no version catalog pins Kotlin.
const DefaultMinKotlin = "2.2.20"

// CatalogPath is the Gradle version catalog, relative to a project root.
var CatalogPath = filepath.Join("gradle", "libs.versions.toml")

// ErrNoCatalog means no version catalog was found above the start directory.
var ErrNoCatalog = errors.New("no gradle/libs.versions.toml found")

type catalog struct {
	Versions map[string]any `toml:"versions"`
}

// FindCatalog walks up from dir and returns the first version catalog found.
func FindCatalog(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, CatalogPath)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoCatalog
		}
		dir = parent
	}
}

// ReadKotlinVersion returns [versions].kotlin from a version catalog.
func ReadKotlinVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var c catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	v, ok := c.Versions["kotlin"].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s: no kotlin entry in [versions]", path)
	}
	return v, nil
}

// DetectMinKotlin returns the Kotlin version pinned by the nearest version
// catalog at or above dir, and where it came from. It falls back to
// DefaultMinKotlin with an empty source.
func DetectMinKotlin(dir string) (version, source string) {
	path, err := FindCatalog(dir)
	if err != nil {
		return DefaultMinKotlin, ""
	}
	v, err := ReadKotlinVersion(path)
	if err != nil {
		return DefaultMinKotlin, ""
	}
	return v, path
}
