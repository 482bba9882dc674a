package storage

import "sync"

// ProfileDrafts holds the name a chat entered with /profile until the
// target exam is picked.
type ProfileDrafts struct {
	mu    sync.Mutex
	names map[int64]string
}

func NewProfileDrafts() *ProfileDrafts {
	return &ProfileDrafts{names: make(map[int64]string)}
}

func (d *ProfileDrafts) Put(chatID int64, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[chatID] = name
}

// Take returns the draft of a chat and forgets it.
func (d *ProfileDrafts) Take(chatID int64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, ok := d.names[chatID]
	delete(d.names, chatID)
	return name, ok
}
