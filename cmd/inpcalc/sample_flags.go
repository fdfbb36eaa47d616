package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inpcalc/internal/services"
	"inpcalc/pkg/contracts/domain"
)

// sampleFlags collects sample metadata from exactly one source: inline
// flags, a YAML file or a metadata workbook row
type sampleFlags struct {
	in        domain.SampleInput
	tubeCount int
	volume    float64
	sigma     float64

	metadataFile string
	sheetFile    string
	sheetName    string
	row          int
}

func (f *sampleFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.in.Type, "type", "", "Sample type (seawater or aerosol)")
	flags.StringVar(&f.in.Location, "location", "", "Collection apparatus (bubbler or coriolis)")
	flags.StringVar(&f.in.Process, "process", "", "Processing code, e.g. UF")
	flags.StringVar(&f.in.CollectionDate, "collected", "", "Collection timestamp, e.g. \"20200420 1200\"")
	flags.StringVar(&f.in.AnalysisDate, "analysed", "", "Analysis timestamp")
	flags.StringVar(&f.in.SampleSourceName, "source-name", "", "Sample source name")
	flags.IntVar(&f.tubeCount, "tubes", 0, "Number of tubes")
	flags.Float64Var(&f.volume, "volume", 0, "Volume per tube")
	flags.StringVar(&f.in.Issues, "issues", "", "Free-text issues noted during analysis")
	flags.Float64Var(&f.sigma, "sigma", domain.DefaultConfidenceSigma, "Confidence interval z value")

	flags.StringVarP(&f.metadataFile, "metadata", "m", "", "YAML file holding the sample metadata")
	flags.StringVar(&f.sheetFile, "sheet", "", "Metadata workbook; the header is row 1")
	flags.StringVar(&f.sheetName, "sheet-name", "", "Worksheet of the metadata workbook (active sheet when empty)")
	flags.IntVar(&f.row, "row", 0, "Worksheet row of the sample in the metadata workbook")

	cmd.MarkFlagsMutuallyExclusive("metadata", "sheet")
	cmd.MarkFlagsRequiredTogether("sheet", "row")
}

// sample builds the sample from whichever source was given
func (f *sampleFlags) sample(cmd *cobra.Command) (*domain.Sample, error) {
	switch {
	case f.metadataFile != "":
		if f.inlineSet(cmd) {
			return nil, fmt.Errorf("%w: --metadata cannot be combined with inline metadata flags", services.ErrInvalidInput)
		}
		return services.LoadMetadataFile(f.metadataFile)
	case f.sheetFile != "":
		if f.inlineSet(cmd) {
			return nil, fmt.Errorf("%w: --sheet cannot be combined with inline metadata flags", services.ErrInvalidInput)
		}
		return services.LoadMetadataRow(f.sheetFile, f.sheetName, f.row)
	}

	in := f.in
	flags := cmd.Flags()
	if flags.Changed("tubes") {
		n := f.tubeCount
		in.TubeCount = &n
	}
	if flags.Changed("volume") {
		v := f.volume
		in.VolumePerTube = &v
	}
	if flags.Changed("sigma") {
		s := f.sigma
		in.ConfidenceSigma = &s
	}
	return domain.NewSample(in)
}

func (f *sampleFlags) inlineSet(cmd *cobra.Command) bool {
	for _, name := range []string{"type", "location", "process", "collected", "analysed",
		"source-name", "tubes", "volume", "issues", "sigma"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
