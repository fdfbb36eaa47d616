// Package files owns the file naming convention shared by raw data and
// calculated reports, and the file system operations around them.
//
// Naming: a Key (type, location, process, date, time) derived from a sample's
// parsed collection date maps to
//
//	<raw_root>/<type>/<type>_<location>_<process>_<YYMMDD>_<HHMM>.<raw_ext>
//	<output_root>/<type>/<location>/<type>_<location>_<process>_<YYMMDD>_<HHMM>_calculated.<report_ext>
//
// An empty location drops both its name token and its directory level.
//
// Locator: resolves a sample to its raw file and fails with SourceNotFound
// when it is absent.
//
// Discovery: lists raw files of one sample type, parsed back into keys.
//
// Manager: writable-directory probe, report lock, temp-file and rename helpers
// used to persist reports atomically.
//
// Example usage:
//
//	naming := files.Naming{RawRoot: paths.RawRoot, OutputRoot: paths.OutputRoot,
//	    RawExtension: "csv", ReportExtension: "xlsx"}
//	src, err := files.NewLocator(naming, logger).Locate(sample)
package files
