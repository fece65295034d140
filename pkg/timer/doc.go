// Package timer implements the immutable countdown timer value.
//
// A Timer is never modified in place. Every transition (Start, Pause,
// Expire, Miss, Reset, SetRemainingTime, the reboot and time-set fixups)
// takes the current value and returns a new one, or the receiver itself
// when the transition does not apply. The registry keeps the single
// authoritative copy per id and replaces it on each update.
//
// # States
//
//	RESET   -> RUNNING             Start
//	RUNNING -> PAUSED              Pause
//	RUNNING -> EXPIRED             Expire (remaining time reached zero)
//	RUNNING -> MISSED              Miss (overdue while nobody was watching)
//	EXPIRED -> RUNNING             SetRemainingTime with a positive value
//	EXPIRED -> MISSED              Miss (ringing was silenced)
//	*       -> RESET               Reset
//
// # Time
//
// Remaining time is tracked against the monotonic clock. For a timer that
// is RUNNING, EXPIRED or MISSED the stored remaining time is the value at
// LastStartTime; the live value is derived by subtracting the monotonic time
// elapsed since then. EXPIRED and MISSED timers keep counting into negative
// values, which is how "overdue by" is displayed.
//
// The wall-clock start time is kept alongside so that running timers can be
// recovered after a reboot, when monotonic readings from the previous boot
// are no longer comparable.
package timer
