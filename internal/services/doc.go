// Package services wires the calculation pipeline into the operations the
// command line exposes.
//
// CalculationService owns the dispatcher, the run ledger and telemetry for
// a configured workspace. Each Calculate call runs one sample through its
// routine, records metrics and writes a ledger entry whatever the outcome.
//
//	svc, err := services.NewCalculationService(ctx, cfg, services.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	result, err := svc.Calculate(ctx, sample)
//
// Samples come from flags, a YAML metadata file (LoadMetadataFile) or one
// row of a metadata workbook (LoadMetadataRow).
//
// HealthService runs the preflight checks: the template and blank source
// open and carry the configured sheets, the raw root exists and the output
// root accepts writes.
package services
