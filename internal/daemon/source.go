package daemon

import "github.com/fsnotify/fsnotify"

// EventSource delivers filesystem events for added directories.
type EventSource interface {
	Add(path string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

type fsnotifySource struct {
	w *fsnotify.Watcher
}

// NewFSNotifySource opens an inotify-backed EventSource.
func NewFSNotifySource() (EventSource, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsnotifySource{w: w}, nil
}

func (s *fsnotifySource) Add(path string) error         { return s.w.Add(path) }
func (s *fsnotifySource) Events() <-chan fsnotify.Event { return s.w.Events }
func (s *fsnotifySource) Errors() <-chan error          { return s.w.Errors }
func (s *fsnotifySource) Close() error                  { return s.w.Close() }
