package attestation

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"
)

// LoadPath feeds the metadata found at path into resolver. path may name a
// single JSON file holding one MetadataObject or a JSON array of them, or a
// directory, in which case every "*.json" file directly inside it is loaded
// the same way. Order of directory entries is filesystem-dependent; callers
// relying on version-based precedence should not depend on load order,
// since AddMetadata already resolves that by version.
func LoadPath(resolver *MetadataResolver, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return trace.ConvertSystemError(err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
				continue
			}
			if err := loadFile(resolver, filepath.Join(path, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	return loadFile(resolver, path)
}

func loadFile(resolver *MetadataResolver, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}

	var objects []MetadataObject
	if err := json.Unmarshal(data, &objects); err != nil {
		var single MetadataObject
		if err := json.Unmarshal(data, &single); err != nil {
			return trace.Wrap(err, "parsing metadata file %s", path)
		}
		objects = []MetadataObject{single}
	}

	for _, obj := range objects {
		if err := resolver.AddMetadata(obj); err != nil {
			return trace.Wrap(err, "loading metadata from %s", path)
		}
	}
	return nil
}
