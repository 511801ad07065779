package actors

import (
	"github.com/sasha-s/go-deadlock"
)

var terminateChan = make(chan struct{})
var terminated bool
var terminateMutex = &deadlock.Mutex{}
var wait = &deadlock.WaitGroup{}

func GetTerminateChan() chan struct{} {
	return terminateChan
}

func GetWaitGroup() *deadlock.WaitGroup {
	return wait
}

// Shutdown tells everything listening on the terminate channel to stop. Safe
// to call more than once.
func Shutdown() {
	terminateMutex.Lock()
	defer terminateMutex.Unlock()
	if !terminated {
		terminated = true
		close(terminateChan)
	}
}
