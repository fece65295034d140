// Package registry owns the authoritative set of timers and the stopwatch.
//
// A Registry keeps an in-memory copy of everything in the persistent store
// and is the only place timers change. Every mutation is written to the
// store first; only then is the cached value replaced, the ringer and the
// expiration scheduler brought in line and listeners told.
//
// # Threading
//
// The registry does no locking. It must be used from a single goroutine,
// normally the model loop of the service package; callers on other
// goroutines marshal their work onto that loop.
//
// # Change Notification
//
// TimerListener and StopwatchListener receive one callback per change with
// the values before and after. A Notifier receives a single TimersChanged
// call per operation, including batch operations such as AfterReboot that
// touch many timers at once.
package registry
