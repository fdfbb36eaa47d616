// Package operations dispatches a sample to its calculation routine and
// runs it.
//
// Core Components:
//
// Registry: maps a Kind (sample type, location) to a Routine. Registration
// order is kept; duplicates and nil routines are rejected. A routine
// registered with AnyLocation serves every location of its type, and an
// exact registration takes precedence over it.
//
// Routine: one calculation. Validate is the precondition check run before
// Calculate, which returns the written report path.
//
// ReportRoutine: the standard pipeline shared by the seawater, bubbler and
// coriolis routines. Its stages (locate, parse, template, reshape, blanks,
// emit) each run in their own span and are tracked in a Progress.
//
// Dispatcher: Select resolves the routine for a sample type and location;
// Run selects, validates and calculates.
//
// Example usage:
//
//	registry, err := operations.NewStandardRegistry(pipeline)
//	if err != nil {
//	    return err
//	}
//	d := operations.NewDispatcher(registry, logger)
//	out, err := d.Run(ctx, sample)
//
// Instrument-specific routines replace the standard one for their kind:
//
//	registry.Replace(operations.Kind{Type: domain.SampleTypeAerosol, Location: domain.LocationCoriolis}, myRoutine)
package operations
