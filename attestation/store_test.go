package attestation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeMetadataFile(t *testing.T, dir, name string, objects []MetadataObject) string {
	t.Helper()
	data, err := json.Marshal(objects)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadPathSingleFile(t *testing.T) {
	dir := t.TempDir()
	_, _, issuerPEM := generateIssuer(t, "Store Root CA")
	path := writeMetadataFile(t, dir, "vendor.json", []MetadataObject{{
		Identifier:          "store-vendor",
		Version:             1,
		TrustedCertificates: []string{issuerPEM},
	}})

	resolver := NewMetadataResolver()
	require.NoError(t, LoadPath(resolver, path))

	_, ok := resolver.identifiers["store-vendor"]
	require.True(t, ok)
}

func TestLoadPathSingleObjectNotArray(t *testing.T) {
	dir := t.TempDir()
	_, _, issuerPEM := generateIssuer(t, "Single Root CA")
	single := MetadataObject{Identifier: "single-vendor", Version: 1, TrustedCertificates: []string{issuerPEM}}
	data, err := json.Marshal(single)
	require.NoError(t, err)
	path := filepath.Join(dir, "single.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	resolver := NewMetadataResolver()
	require.NoError(t, LoadPath(resolver, path))

	_, ok := resolver.identifiers["single-vendor"]
	require.True(t, ok)
}

func TestLoadPathDirectory(t *testing.T) {
	dir := t.TempDir()
	_, _, pemA := generateIssuer(t, "Dir Root CA A")
	_, _, pemB := generateIssuer(t, "Dir Root CA B")
	writeMetadataFile(t, dir, "a.json", []MetadataObject{{Identifier: "dir-a", Version: 1, TrustedCertificates: []string{pemA}}})
	writeMetadataFile(t, dir, "b.json", []MetadataObject{{Identifier: "dir-b", Version: 1, TrustedCertificates: []string{pemB}}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not json"), 0o600))

	resolver := NewMetadataResolver()
	require.NoError(t, LoadPath(resolver, dir))

	_, ok := resolver.identifiers["dir-a"]
	require.True(t, ok)
	_, ok = resolver.identifiers["dir-b"]
	require.True(t, ok)
}

func TestLoadPathMissingFile(t *testing.T) {
	resolver := NewMetadataResolver()
	err := LoadPath(resolver, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
