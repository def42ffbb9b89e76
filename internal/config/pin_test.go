package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
[versions]
agp = "8.7.0"
kotlin = "2.1.0"

[libraries]
kotlin-stdlib = { module = "org.jetbrains.kotlin:kotlin-stdlib", version.ref = "kotlin" }
`

func TestDetectMinKotlin_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gradle", "libs.versions.toml"), sampleCatalog)
	nested := filepath.Join(root, "scripts", "aliases")
	writeFile(t, filepath.Join(nested, "README"), "")

	version, source := DetectMinKotlin(nested)
	assert.Equal(t, "2.1.0", version)
	assert.Equal(t, filepath.Join(root, "gradle", "libs.versions.toml"), source)
}

func TestDetectMinKotlin_Fallback(t *testing.T) {
	version, source := DetectMinKotlin(t.TempDir())
	assert.Equal(t, DefaultMinKotlin, version)
	assert.Empty(t, source)
}

func TestReadKotlinVersion(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"present", sampleCatalog, "2.1.0", false},
		{"no kotlin", "[versions]\nagp = \"8.7.0\"\n", "", true},
		{"no versions", "[libraries]\n", "", true},
		{"not a string", "[versions]\nkotlin = 2\n", "", true},
		{"malformed", "[versions\n", "", true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name, "libs.versions.toml")
			writeFile(t, path, tt.content)
			got, err := ReadKotlinVersion(path)
			if tt.wantErr {
				assert.Error(t, err, "case %d", i)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectMinKotlin_UnreadableCatalogFallsBack(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gradle", "libs.versions.toml"), "[versions]\n")

	version, source := DetectMinKotlin(root)
	assert.Equal(t, DefaultMinKotlin, version)
	assert.Empty(t, source)
}
