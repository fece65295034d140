// Package service assembles the timer engine into a running process.
//
// # ClockService
//
// ClockService owns every long-lived component: the persistent store, the
// registry, the expiration scheduler, the ringer, the model and background
// loops, the wake lock and the event journal. It handles:
//   - loading persisted timers and recovering them after a restart
//   - marshalling all registry work onto the model loop
//   - delivering alarms, guard retries and auto-silence on the model loop
//   - watching for wall clock changes
//   - orderly shutdown
//
// Example usage:
//
//	store, _ := persistence.OpenFileStore("/var/lib/deskclock/state.cbor")
//	cfg := service.DefaultConfig()
//	cfg.Store = store
//	cfg.Output = audio.NewRouter(audio.NewBell(os.Stdout, clock.System(), 0), nil)
//
//	svc, err := service.NewClockService(cfg)
//	svc.Start(ctx)
//	defer svc.Stop()
//
//	svc.Do(ctx, func(reg *registry.Registry) error {
//	    t, err := reg.Add(5*time.Minute, "tea", time.Minute, false)
//	    if err != nil {
//	        return err
//	    }
//	    return reg.Update(t.Start(clock.System()))
//	})
//
// # Restarts
//
// The monotonic clock restarts with the process, so Start treats every
// process start as a reboot and runs the registry's reboot fixup.
package service
