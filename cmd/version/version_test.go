package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectVersionsIncludesCatalog(t *testing.T) {
	v := collectVersions()
	assert.Equal(t, CoreVersion, v.Version)
	assert.Equal(t, "2026.1", v.CatalogVersion)
	assert.Len(t, v.CatalogDigest, 64)
}

func TestPrintVersionInfo(t *testing.T) {
	v := Versions{Version: "1.0.0", GolangVersion: "go1.21", BuildTime: "now", CatalogVersion: "c1", CatalogDigest: "d1"}

	var text bytes.Buffer
	require.NoError(t, printVersionInfo(&text, v, false))
	assert.Contains(t, text.String(), "Core Version: v1.0.0\n")
	assert.Contains(t, text.String(), "Catalog Version: c1 (sha3-256 d1)\n")

	var raw bytes.Buffer
	require.NoError(t, printVersionInfo(&raw, v, true))
	var decoded Versions
	require.NoError(t, json.Unmarshal(raw.Bytes(), &decoded))
	assert.Equal(t, v, decoded)
}
