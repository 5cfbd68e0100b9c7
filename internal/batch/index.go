package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// SceneExts are the file extensions Discover treats as scene files.
var SceneExts = []string{".in", ".scene"}

// Job is one scene file to render.
type Job struct {
	Name string // path relative to the scanned dir, without extension
	Path string
}

// Discover scans dir and its subdirectories for scene files, sorted by name.
func Discover(dir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden dirs and our own output
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "renders") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isScene(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, Job{
			Name: filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))),
			Path: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

func isScene(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SceneExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Filter keeps the jobs whose name matches pattern (filepath.Match syntax).
// An empty pattern keeps everything.
func Filter(jobs []Job, pattern string) ([]Job, error) {
	if pattern == "" {
		return jobs, nil
	}
	var out []Job
	for _, j := range jobs {
		ok, err := filepath.Match(pattern, j.Name)
		if err != nil {
			return nil, fmt.Errorf("batch: pattern %q: %w", pattern, err)
		}
		if ok {
			out = append(out, j)
		}
	}
	return out, nil
}
