package monitors

import (
	"encoding/json"
	"fmt"

	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/slices"
	"nostrich/engine/actors"
	"nostrich/engine/library"
)

const dedupStore = "handled"

// Dedup is the persisted set of event ids a monitor has already answered.
// It only ever grows: an event is never answered twice, no matter how long
// the agent was offline.
type Dedup struct {
	name string
	ids  map[library.Sha256]bool
	mu   *deadlock.Mutex
}

// LoadDedup restores the set for the named monitor from disk. A missing or
// unparseable file means no history, never a fatal error.
func LoadDedup(name string) *Dedup {
	d := &Dedup{
		name: name,
		ids:  make(map[library.Sha256]bool),
		mu:   &deadlock.Mutex{},
	}
	file, ok := actors.Open(dedupStore, name)
	if ok {
		var list []library.Sha256
		if err := json.NewDecoder(file).Decode(&list); err != nil {
			library.LogCLI(fmt.Sprintf("could not parse %s history, starting empty: %s", name, err), 2)
		}
		file.Close()
		for _, id := range list {
			d.ids[id] = true
		}
	}
	return d
}

func (d *Dedup) Contains(id library.Sha256) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ids[id]
}

// Add records the ids as handled and writes the whole set to disk before
// returning, so a crash right after a publish cannot produce a second reply.
func (d *Dedup) Add(ids ...library.Sha256) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		d.ids[id] = true
	}
	d.persist()
}

func (d *Dedup) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

// caller must hold d.mu
func (d *Dedup) persist() {
	list := make([]library.Sha256, 0, len(d.ids))
	for id := range d.ids {
		list = append(list, id)
	}
	slices.Sort(list)
	b, err := json.Marshal(list)
	if err != nil {
		library.LogCLI(err.Error(), 0)
		return
	}
	actors.Write(dedupStore, d.name, b)
}
