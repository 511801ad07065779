//go:build darwin

package monitors

import (
	"github.com/prashantgupta24/mac-sleep-notifier/notifier"
	"nostrich/engine/actors"
	"nostrich/engine/library"
)

// A sleeping machine tears relay connections in ways that look live. Shut
// down cleanly instead and let the supervisor restart us.
func WatchSleep() {
	sleepNotifier := notifier.GetInstance().Start()
	go func() {
		<-sleepNotifier
		library.LogCLI("system sleep detected, terminating application", 2)
		actors.Shutdown()
	}()
}
