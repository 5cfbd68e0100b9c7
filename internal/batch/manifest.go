package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry represents one scene in the output manifest.
type ManifestEntry struct {
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Key       string `json:"key,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Samples   int    `json:"samples,omitempty"`
	Rays      int64  `json:"rays,omitempty"`
	Hits      int64  `json:"hits,omitempty"`
	BVHNodes  int    `json:"bvh_nodes,omitempty"`
	BVHDepth  int    `json:"bvh_depth,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// WriteManifest writes the results as JSON. Image paths are stored relative
// to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Name:      r.Name,
			Key:       r.Key,
			ElapsedMS: r.Elapsed.Milliseconds(),
			Error:     r.Error,
		}
		if r.Image != "" {
			if rel, err := filepath.Rel(dir, r.Image); err == nil {
				e.Image = filepath.ToSlash(rel)
			} else {
				e.Image = r.Image
			}
		}
		if r.Success {
			e.Width = r.Stats.Width
			e.Height = r.Stats.Height
			e.Samples = r.Stats.Samples
			e.Rays = r.Stats.Rays
			e.Hits = r.Stats.Hits
			e.BVHNodes = r.Stats.Tree.Nodes
			e.BVHDepth = r.Stats.Tree.MaxDepth
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
