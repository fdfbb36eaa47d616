// Package blanks loads blank-correction reference series from the blank
// source workbook. Each configured section contributes one series, read from
// the column under the configured header ("N(frozen)" by default).
package blanks
