package timeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *Manifest {
	long := testScene("scene_01", 0, 17)
	chunks := ChunkScene(long, chunkCfg())

	short1 := testScene("scene_02", 17, 20)
	short2 := testScene("scene_03", 20, 23)
	packed := CombineUnits([]Unit{SceneUnit(&short1), SceneUnit(&short2)}, combineCfg())

	units := make([]Unit, 0, len(chunks)+len(packed))
	for i := range chunks {
		units = append(units, ChunkUnit(&chunks[i]))
	}
	units = append(units, packed...)

	return &Manifest{
		Version:     ManifestVersion,
		TaskID:      "t-123",
		SourcePath:  "/videos/sample.mp4",
		DurationSec: 23,
		Units:       units,
	}
}

func TestManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "manifest.json")
	m := sampleManifest()

	require.NoError(t, SaveManifest(path, m))

	got, err := LoadManifest(path)
	require.NoError(t, err)

	// Write then read must reproduce the identical unit set and ordering.
	assert.Equal(t, m, got)
}

func TestSaveManifest_RejectsInvalidUnit(t *testing.T) {
	bad := &Manifest{
		Version: ManifestVersion,
		Units:   []Unit{{Kind: KindScene}}, // scene kind, nil payload
	}

	err := SaveManifest(filepath.Join(t.TempDir(), "m.json"), bad)
	assert.Error(t, err)
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadManifest_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	m := sampleManifest()
	m.Version = ManifestVersion + 1
	require.NoError(t, SaveManifest(path, m))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestSceneOf(t *testing.T) {
	m := sampleManifest()

	var owners []string
	for _, u := range m.Units {
		owners = append(owners, SceneOf(u)...)
	}

	assert.Equal(t, []string{"scene_01", "scene_01", "scene_01", "scene_02", "scene_03"}, owners)
}
