package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// FileSource reads the funnel document from a single YAML file.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the given YAML file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Content implements ports.ContentSource.
func (f *FileSource) Content(ctx context.Context) (*domain.Content, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read funnel file %s: %w", f.Path, err)
	}
	var content domain.Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse funnel file %s: %w", f.Path, err)
	}
	return &content, nil
}

// Watch implements ports.Watchable. It signals whenever the funnel file is
// written or replaced, until ctx is cancelled. The channel is coalescing: a
// burst of file events may produce a single signal.
//
// The parent directory is watched rather than the file itself because most
// editors save by renaming a temp file over the original, which would
// invalidate a watch on the file's inode.
func (f *FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.Path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", f.Path, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()
		target := filepath.Clean(f.Path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}

// StaticSource serves an in-memory document. Useful for tests and for hosts
// that embed their content.
type StaticSource struct {
	Doc *domain.Content
}

// NewStaticSource wraps an in-memory document.
func NewStaticSource(doc *domain.Content) *StaticSource {
	return &StaticSource{Doc: doc}
}

// Content implements ports.ContentSource.
func (s *StaticSource) Content(ctx context.Context) (*domain.Content, error) {
	if s.Doc == nil {
		return nil, fmt.Errorf("static source has no document")
	}
	return s.Doc, nil
}
