package reportpipe

import "context"

// ErrorHandler customizes error handling per pipeline stage. Without an
// ErrorHandler, the run stops on the first error in any stage — the default
// matches interactive, single-shot reporting where the person running the
// report corrects the query and reruns.
//
// In sectioned runs, returning ActionSkip drops the failing section and
// lets the remaining sections complete. In single-section runs, ActionSkip
// ends the run without rendering and without an error.
//
// Common pattern for a multi-page dashboard where one broken section should
// not take down the rest:
//
//	func (j *Dashboard) OnError(ctx context.Context, stage reportpipe.Stage, err error) reportpipe.Action {
//	    log.Warn("section failed, continuing", "stage", stage, "error", err)
//	    return reportpipe.ActionSkip
//	}
//
// Skipped errors still increment Stats.Errors. The err parameter passed to
// Stopper.Stop only contains the fatal error that ended the run.
type ErrorHandler interface {
	// OnError is called when an error occurs during any stage.
	// Return ActionSkip to continue, ActionFail to stop the run.
	OnError(ctx context.Context, stage Stage, err error) Action
}

// Starter is called before the run begins. Implement this interface when
// you need setup work or an enriched context before extraction starts.
//
// Use Starter for:
//   - Adding values to the context (trace spans, logger fields)
//   - Recording the start time for elapsed-time reporting
//   - Logging the start of a report run
//
// The context returned by Start is propagated to all pipeline stages and to
// Stopper.Stop. The run ID is already attached when Start is called; see
// [RunIDFromContext].
//
// Start is called exactly once, before the first extract.
type Starter interface {
	// Start is called before extraction begins.
	// The returned context is used for the entire run.
	Start(ctx context.Context) context.Context
}

// Stopper is called after the run completes, whether it succeeded or
// failed. Implement this interface for final logging or cleanup.
//
// The err parameter is the same error value returned by Run. Errors
// handled with ActionSkip do not appear in err, even though they increment
// Stats.Errors.
//
// Example:
//
//	func (j *MyReport) Stop(ctx context.Context, stats *reportpipe.Stats, err error) {
//	    if err != nil {
//	        log.Error("report failed", "error", err, "stats", stats)
//	        return
//	    }
//	    log.Info("report complete", "stats", stats)
//	}
//
// Stop is called exactly once, after the pipeline Run method returns.
type Stopper interface {
	Stop(ctx context.Context, stats *Stats, err error)
}
