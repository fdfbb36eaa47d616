// Command inpcalc turns raw ice-nucleation instrument exports into
// calculated report workbooks.
//
//	inpcalc calculate --type seawater --process UF --collected "20200420 1200" ...
//	inpcalc calculate --metadata sample.yaml
//	inpcalc calculate --sheet samples.xlsx --row 4
//	inpcalc locate --metadata sample.yaml
//	inpcalc list seawater
//	inpcalc history
//	inpcalc check
//
// Configuration comes from inpcalc.yaml, a .env file and INP_* environment
// variables. The exit status identifies the failure kind; see exitCode.
package main
