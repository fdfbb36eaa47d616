// Package shared holds code used across the calculator's packages that
// belongs to no single component.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler for log assertions
//	- Workspace, a temp base directory with template, blank workbook and
//	  raw file fixtures generated with excelize
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    ws := testutil.NewStandardWorkspace(t, 3)
//	    ws.WriteRaw("seawater", testutil.RawBaseName("seawater", "bubbler"), 3)
//	    cfg := ws.Config()
//	    ...
//	}
package shared
