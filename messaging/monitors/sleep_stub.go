//go:build !darwin

package monitors

func WatchSleep() {}
