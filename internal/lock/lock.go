// Package lock anahtar başına karşılıklı dışlama sağlar. Sipariş kabulü,
// kapasite kontrolü ile yazma arasındaki yarışı üretim günü başına tek
// seri noktadan geçirerek çözer; farklı günler birbirini bloklamaz.
package lock

import "sync"

type KeyedMutex struct {
	mu      sync.Mutex
	entries map[uint]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[uint]*entry)}
}

func (k *KeyedMutex) Lock(key uint) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *KeyedMutex) Unlock(key uint) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("lock: Unlock of unlocked key")
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
