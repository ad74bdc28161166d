package testutil

import (
	"sync"

	"riffbox/internal/riffbox"
)

// StubVideoFactory builds videos without touching the filesystem. Paths
// registered with FailOn return the given error instead.
type StubVideoFactory struct {
	mu       sync.Mutex
	failures map[string]error
	calls    []string
}

var _ riffbox.VideoFactory = (*StubVideoFactory)(nil)

func NewStubVideoFactory() *StubVideoFactory {
	return &StubVideoFactory{failures: make(map[string]error)}
}

// FailOn makes CreateVideo return err for path.
func (f *StubVideoFactory) FailOn(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = err
}

func (f *StubVideoFactory) CreateVideo(path string) (riffbox.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if err, ok := f.failures[path]; ok {
		return riffbox.Video{}, err
	}
	return riffbox.NewVideo(path, "", 0), nil
}

// Calls returns the paths passed to CreateVideo, in order.
func (f *StubVideoFactory) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
