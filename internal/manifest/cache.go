// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import "sync"

// The manifest lives only in process memory, keyed by the URL it came from.
var (
	cache     = map[string]*Manifest{}
	cacheLock sync.RWMutex
)

// GetCached returns the cached manifest for url, or nil if not cached.
func GetCached(url string) *Manifest {
	cacheLock.RLock()
	defer cacheLock.RUnlock()
	return cache[url]
}

// SetCached stores the manifest for url in RAM.
func SetCached(url string, m *Manifest) {
	cacheLock.Lock()
	defer cacheLock.Unlock()
	cache[url] = m
}

// ClearCache removes every cached manifest.
func ClearCache() {
	cacheLock.Lock()
	defer cacheLock.Unlock()
	cache = map[string]*Manifest{}
}
