package timeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"sceneforge/pkg/errors"
)

// ManifestVersion is bumped on breaking changes to the unit schema.
const ManifestVersion = 1

// Manifest is the sole hand-off artifact between pipeline phases: the
// segmentation/chunking/combination phases write it, the generation and
// assembly phases read it. It must survive a write/read round-trip with the
// unit set and ordering unchanged.
type Manifest struct {
	Version     int     `json:"version"`
	TaskID      string  `json:"task_id,omitempty"`
	SourcePath  string  `json:"source_path"`
	DurationSec float64 `json:"source_duration"`
	CreatedAt   string  `json:"created_at,omitempty"`
	Units       []Unit  `json:"units"`
}

// SaveManifest writes the manifest atomically: a temp file in the target
// directory is renamed into place so readers never observe a half-written
// manifest.
func SaveManifest(path string, m *Manifest) error {
	for _, u := range m.Units {
		if err := u.Validate(); err != nil {
			return errors.Wrap(errors.CodeInvalidParams, "manifest contains invalid unit", err)
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "marshal manifest", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "create manifest dir", err)
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "create temp manifest", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.CodeFileWriteError, "write manifest", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.CodeFileWriteError, "close manifest", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.CodeFileWriteError, "rename manifest", err)
	}
	return nil
}

// LoadManifest reads and validates a manifest written by SaveManifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.CodeFileNotFound, "manifest not found", err)
		}
		return nil, errors.Wrap(errors.CodeFileNotFound, "read manifest", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidParams, "parse manifest", err)
	}
	if m.Version != ManifestVersion {
		return nil, errors.New(errors.CodeInvalidParams, "unsupported manifest version")
	}
	for _, u := range m.Units {
		if err := u.Validate(); err != nil {
			return nil, errors.Wrap(errors.CodeInvalidParams, "manifest contains invalid unit", err)
		}
	}
	return &m, nil
}

// SceneOf resolves the logical scene ids a unit contributes to: a scene or
// chunk maps to one id, a combined group to each member's id.
func SceneOf(u Unit) []string {
	switch u.Kind {
	case KindScene:
		return []string{u.Scene.ID}
	case KindChunk:
		return []string{u.Chunk.ParentSceneID}
	case KindGroup:
		return append([]string(nil), u.Group.MemberIDs...)
	}
	return nil
}
