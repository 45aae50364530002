package monitor

import (
	"sync"

	"github.com/aleister1102/changewatch/internal/normalizer"
	"github.com/rs/zerolog"
)

// URLMutexManager manages per-URL mutexes so a document listed under several
// providers is never fetched concurrently with itself.
type URLMutexManager struct {
	logger   zerolog.Logger
	mutexes  map[string]*sync.Mutex
	mapMutex sync.RWMutex
}

// NewURLMutexManager creates a new URLMutexManager
func NewURLMutexManager(logger zerolog.Logger) *URLMutexManager {
	return &URLMutexManager{
		logger:  logger.With().Str("component", "URLMutexManager").Logger(),
		mutexes: make(map[string]*sync.Mutex),
	}
}

// GetMutex gets or creates the mutex for a URL. URLs that normalize to the same
// form share a mutex.
func (umm *URLMutexManager) GetMutex(url string) *sync.Mutex {
	key := mutexKey(url)

	umm.mapMutex.RLock()
	mutex := umm.mutexes[key]
	umm.mapMutex.RUnlock()
	if mutex != nil {
		return mutex
	}

	umm.mapMutex.Lock()
	defer umm.mapMutex.Unlock()

	// Another goroutine might have created it.
	if mutex, exists := umm.mutexes[key]; exists {
		return mutex
	}
	mutex = &sync.Mutex{}
	umm.mutexes[key] = mutex
	return mutex
}

// CleanupUnusedMutexes removes mutexes for URLs that are no longer monitored
func (umm *URLMutexManager) CleanupUnusedMutexes(activeURLs []string) {
	active := make(map[string]struct{}, len(activeURLs))
	for _, url := range activeURLs {
		active[mutexKey(url)] = struct{}{}
	}

	umm.mapMutex.Lock()
	removed := 0
	for key := range umm.mutexes {
		if _, ok := active[key]; !ok {
			delete(umm.mutexes, key)
			removed++
		}
	}
	remaining := len(umm.mutexes)
	umm.mapMutex.Unlock()

	if removed > 0 {
		umm.logger.Debug().Int("removed", removed).Int("remaining", remaining).Msg("Cleaned up unused URL mutexes")
	}
}

// GetMutexCount returns the current number of mutexes
func (umm *URLMutexManager) GetMutexCount() int {
	umm.mapMutex.RLock()
	defer umm.mapMutex.RUnlock()
	return len(umm.mutexes)
}

func mutexKey(url string) string {
	if normalized, err := normalizer.NormalizeURL(url); err == nil {
		return normalized
	}
	return url
}
