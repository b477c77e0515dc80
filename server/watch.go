package server

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/TFMV/cohortviz/ingest"
)

// debounceWindow batches editor write bursts into a single reload.
const debounceWindow = 250 * time.Millisecond

// watchRoster reloads the roster whenever the file changes on disk. A
// malformed intermediate save is logged and skipped, leaving the previous
// graph live. Returns when the context is canceled.
func (s *Server) watchRoster(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the parent directory: many editors save by replacing the file,
	// which silently kills a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)
	debounce := time.NewTimer(debounceWindow)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(debounceWindow)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("roster watch error: %v", err)

		case <-debounce.C:
			graph, err := ingest.LoadFile(target)
			if err != nil {
				log.Printf("roster reload skipped: %v", err)
				continue
			}
			if s.config.Tune != nil {
				s.config.Tune(graph)
			}
			if err := s.state.Swap(graph); err != nil {
				log.Printf("roster swap failed: %v", err)
				continue
			}
			log.Printf("roster reloaded: %d contributors, %d edges",
				len(graph.Contributors), len(graph.Edges))
			s.hub.BroadcastReload()
		}
	}
}
