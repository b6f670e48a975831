package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalog = `---
- Streaming:
    - Netflix:
        id: netflix
        website: https://www.netflix.com
        description: Films et séries en streaming
    - Spotify:
        website: https://www.spotify.com
- Cloud:
    - Cloudflare:
        website: https://www.cloudflare.com
    - Broken:
        website: not-a-url
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	config, err := NewLoader(writeCatalog(t, sampleCatalog)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(config) != 2 {
		t.Fatalf("Load() returned %d groups, want 2", len(config))
	}
	streaming := config[0]["Streaming"]
	if len(streaming) != 2 {
		t.Fatalf("Streaming has %d entries, want 2", len(streaming))
	}
	netflix := streaming[0]["Netflix"]
	if netflix.ID != "netflix" || netflix.Website != "https://www.netflix.com" {
		t.Errorf("Netflix entry = %+v", netflix)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	_, err := NewLoader("/nonexistent/path/catalog.yaml").Load()
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	_, err := NewLoader(writeCatalog(t, "- Streaming: [unterminated")).Load()
	if err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}
