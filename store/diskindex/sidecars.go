package diskindex

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-mizu/blueprints/webdex/internal/model"
)

// Sidecar file names, per spec.md section 6 and the manifest/doc
// lengths additions in SPEC_FULL.md section 3.
const (
	FingerprintsFileName = "doc_fingerprints.json"
	SimHashesFileName    = "doc_simhashes.json"
	DocLengthsFileName   = "doc_lengths.json"
	ManifestFileName     = "manifest.json"
)

// WriteSidecars persists the fingerprints, simhashes, and doc-length
// maps a build produces. The manifest is written separately by
// WriteManifest.
func WriteSidecars(outDir string, res Result) error {
	if err := writeJSON(filepath.Join(outDir, FingerprintsFileName), res.Fingerprints); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, SimHashesFileName), res.SimHashes); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, DocLengthsFileName), res.DocLengths); err != nil {
		return err
	}
	return nil
}

// WriteManifest persists the global statistics spec.md section 9
// says must be derived from the build, not hardcoded.
func WriteManifest(outDir string, m model.Manifest) error {
	return writeJSON(filepath.Join(outDir, ManifestFileName), m)
}

func writeJSON(path string, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return &IOError{Op: "write " + filepath.Base(path), Err: err}
	}
	return os.Rename(tmp, path)
}

// LoadManifest reads manifest.json. Missing file is ErrMissingIndex:
// without N, the ranker cannot compute IDF.
func LoadManifest(outDir string) (model.Manifest, error) {
	buf, err := os.ReadFile(filepath.Join(outDir, ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Manifest{}, ErrMissingIndex
		}
		return model.Manifest{}, &IOError{Op: "read manifest", Err: err}
	}
	var m model.Manifest
	if err := json.Unmarshal(buf, &m); err != nil {
		return model.Manifest{}, err
	}
	return m, nil
}

// LoadFingerprints reads doc_fingerprints.json. A missing file
// returns ErrMissingSidecar so the caller can disable exact-dedup.
func LoadFingerprints(outDir string) (map[string]string, error) {
	var m map[string]string
	if err := loadSidecar(filepath.Join(outDir, FingerprintsFileName), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadSimHashes reads doc_simhashes.json. A missing file returns
// ErrMissingSidecar so the caller can disable near-dedup.
func LoadSimHashes(outDir string) (map[string]uint64, error) {
	var m map[string]uint64
	if err := loadSidecar(filepath.Join(outDir, SimHashesFileName), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadDocLengths reads doc_lengths.json. A missing file returns
// ErrMissingSidecar; callers should fall back to the default length.
func LoadDocLengths(outDir string) (map[string]int, error) {
	var m map[string]int
	if err := loadSidecar(filepath.Join(outDir, DocLengthsFileName), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func loadSidecar(path string, v any) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrMissingSidecar
		}
		return &IOError{Op: "read sidecar", Err: err}
	}
	return json.Unmarshal(buf, v)
}
