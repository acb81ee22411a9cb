package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes all phases sequentially. The first failure aborts
// the run; completed phases are not rolled back, rerunning the stage
// resumes from existing resources.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("starting run %s with %d phases", ctx.RunID, len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		ctx.Observer.Event(Event{
			Type:    EventPhaseStarted,
			Phase:   phase.Name(),
			Message: fmt.Sprintf("starting (%d/%d)", i+1, len(phases)),
		})

		err := phase.Provision(ctx)
		ctx.Metrics.ObservePhase(phase.Name(), time.Since(phaseStart), err)

		if err != nil {
			ctx.Observer.Event(Event{
				Type:    EventPhaseFailed,
				Phase:   phase.Name(),
				Message: fmt.Sprintf("failed: %v", err),
			})
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Event(Event{
			Type:    EventPhaseCompleted,
			Phase:   phase.Name(),
			Message: fmt.Sprintf("completed in %v", time.Since(phaseStart).Round(time.Millisecond)),
		})
	}

	ctx.Observer.Printf("run %s completed in %v", ctx.RunID, time.Since(start).Round(time.Millisecond))
	return nil
}
