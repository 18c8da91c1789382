package usecase

import (
	"strconv"
	"sync"
)

// KeyedMutex serializes work per string key. Entries are reference counted and removed
// once no holder or waiter remains.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	entry := k.acquire(key)
	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.release(key, entry)
	}
}

// TryLock never blocks. ok is false when another holder owns key.
func (k *KeyedMutex) TryLock(key string) (func(), bool) {
	entry := k.acquire(key)
	if !entry.mu.TryLock() {
		k.release(key, entry)
		return nil, false
	}
	return func() {
		entry.mu.Unlock()
		k.release(key, entry)
	}, true
}

func (k *KeyedMutex) acquire(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (k *KeyedMutex) release(key string, entry *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func participantLockKey(leagueID string, week int, participantID string) string {
	return leagueID + "::" + strconv.Itoa(week) + "::" + participantID
}

func scoreWeekLockKey(leagueID string, week int) string {
	return "score::" + leagueID + "::" + strconv.Itoa(week)
}
