// Package core provides the plan service used by the web server and the CLI.
//
// # Service
//
// [Service] owns the parsed plan. It loads it from a persist.Store, hands out
// read-only snapshots, applies week edits through grid.Update and records
// every change in an audit.Store:
//
//	svc := core.NewService(persist.NewLocalFile("public/plan.csv"), nil)
//	if err := svc.Load(ctx); err != nil {
//	    return err
//	}
//	week, err := svc.UpdateWeek(ctx, 3, core.WeekEdit{ActualMileage: &km})
//
// # Saving
//
// [Autosaver] saves the plan once edits have settled for a short delay. A
// [SaveLimiter] with a single slot keeps saves strictly one after another.
// On shutdown the autosaver flushes pending edits before returning.
//
// # Watching
//
// [Watcher] reloads the plan when the file on disk is changed by another
// program. Reloads are refused while local edits are unsaved. After a save
// conflict [Service.Discard] drops local edits and picks up the stored plan.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
package core
