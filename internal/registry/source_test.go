package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/registry"
)

func writeFunnelFile(t *testing.T, path, entry string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("entry: "+entry+"\n"), 0o644))
}

func TestFileSource_WatchSignalsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	writeFunnelFile(t, path, "welcome")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := registry.NewFileSource(path).Watch(ctx)
	require.NoError(t, err)

	// Let the watcher register before touching the file.
	time.Sleep(50 * time.Millisecond)
	writeFunnelFile(t, path, "intro")

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal after file write")
	}
}

func TestFileSource_WatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "funnel.yaml")
	writeFunnelFile(t, path, "welcome")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := registry.NewFileSource(path).Watch(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case <-ch:
		t.Fatal("unexpected signal for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileSource_WatchStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	writeFunnelFile(t, path, "welcome")

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := registry.NewFileSource(path).Watch(ctx)
	require.NoError(t, err)

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel still open after cancel")
		}
	}
}

func TestFileSource_WatchMissingDirectoryFails(t *testing.T) {
	src := registry.NewFileSource(filepath.Join(t.TempDir(), "nope", "funnel.yaml"))
	_, err := src.Watch(context.Background())
	require.Error(t, err)
}
