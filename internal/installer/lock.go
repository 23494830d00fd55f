package installer

import "sync"

// slugLocks serializes installs per slug. Different slugs install in parallel;
// two installs of the same slug queue up, and the scanner skips slugs that are
// mid-install rather than reading a half-written directory.
var slugLocks sync.Map // slug -> *sync.Mutex

func lockFor(slug string) *sync.Mutex {
	mu, _ := slugLocks.LoadOrStore(slug, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// TryLock acquires the install lock for slug without blocking. Returns false
// when an install is already running.
func TryLock(slug string) bool {
	return lockFor(slug).TryLock()
}

// Unlock releases the install lock for slug.
func Unlock(slug string) {
	lockFor(slug).Unlock()
}
