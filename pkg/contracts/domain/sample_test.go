package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inpcalc/internal/errors"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func validInput() SampleInput {
	return SampleInput{
		Type:             "seawater",
		Location:         "bubbler",
		Process:          "UF",
		CollectionDate:   "20200420 120000",
		AnalysisDate:     "20200422 093000",
		SampleSourceName: "station 4 surface",
		TubeCount:        intPtr(32),
		VolumePerTube:    floatPtr(0.2),
		Issues:           "none",
	}
}

func TestNewSample(t *testing.T) {
	s, err := NewSample(validInput())
	require.NoError(t, err)

	assert.Equal(t, SampleTypeSeawater, s.Type())
	assert.Equal(t, LocationBubbler, s.Location())
	assert.Equal(t, "UF", s.Process())
	assert.Equal(t, time.Date(2020, 4, 20, 12, 0, 0, 0, time.UTC), s.CollectionDate())
	assert.Equal(t, time.Date(2020, 4, 22, 9, 30, 0, 0, time.UTC), s.AnalysisDate())
	assert.Equal(t, 32, s.TubeCount())
	assert.Equal(t, 0.2, s.VolumePerTube())
	assert.Equal(t, DefaultConfidenceSigma, s.ConfidenceSigma())
	assert.Equal(t, "seawater/bubbler/UF/20200420 120000", s.String())
}

func TestNewSampleMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SampleInput)
		missing []string
	}{
		{
			name:    "process",
			mutate:  func(in *SampleInput) { in.Process = "  " },
			missing: []string{"process"},
		},
		{
			name: "several at once",
			mutate: func(in *SampleInput) {
				in.CollectionDate = ""
				in.TubeCount = nil
				in.VolumePerTube = nil
			},
			missing: []string{"collection_date", "tube_count", "volume_per_tube"},
		},
		{
			name: "aerosol without location",
			mutate: func(in *SampleInput) {
				in.Type = "aerosol"
				in.Location = ""
			},
			missing: []string{"location"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			s, err := NewSample(in)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, apperrors.ErrMissingMetadataField)

			fields, ok := apperrors.ContextValue(err, "fields")
			require.True(t, ok)
			assert.Equal(t, tt.missing, fields)
		})
	}
}

func TestNewSampleInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SampleInput)
		field  string
	}{
		{"unknown type", func(in *SampleInput) { in.Type = "freshwater" }, "type"},
		{"unknown location", func(in *SampleInput) { in.Location = "rooftop" }, "location"},
		{"negative tubes", func(in *SampleInput) { in.TubeCount = intPtr(-1) }, "tube_count"},
		{"zero sigma", func(in *SampleInput) { in.ConfidenceSigma = floatPtr(0) }, "confidence_sigma"},
		{"bad collection date", func(in *SampleInput) { in.CollectionDate = "April 20th" }, "collection_date"},
		{"bad analysis date", func(in *SampleInput) { in.AnalysisDate = "2020/04/22" }, "analysis_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := NewSample(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
			field, _ := apperrors.ContextValue(err, "field")
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestNewSampleSeawaterWithoutLocation(t *testing.T) {
	in := validInput()
	in.Location = ""

	s, err := NewSample(in)
	require.NoError(t, err)
	assert.Equal(t, LocationNone, s.Location())
	assert.Equal(t, "seawater/UF/20200420 120000", s.String())
}

func TestNewSampleNormalizesCase(t *testing.T) {
	in := validInput()
	in.Type = " Aerosol "
	in.Location = "CORIOLIS"
	in.ConfidenceSigma = floatPtr(2.58)

	s, err := NewSample(in)
	require.NoError(t, err)
	assert.Equal(t, SampleTypeAerosol, s.Type())
	assert.Equal(t, LocationCoriolis, s.Location())
	assert.Equal(t, 2.58, s.ConfidenceSigma())
}

func TestSampleFromFields(t *testing.T) {
	s, err := SampleFromFields(map[string]string{
		"Type":                   "seawater",
		"location":               "bubbler",
		"process":                "UF",
		"sample collection date": "20200420 120000",
		"sample analysis date":   "20200422 093000",
		"sample source name":     "station 4",
		"# tubes":                "32.0",
		"ml/tube":                "0.2",
		"issues":                 "",
		"sigma":                  "1.645",
	})
	require.NoError(t, err)
	assert.Equal(t, 32, s.TubeCount())
	assert.Equal(t, 0.2, s.VolumePerTube())
	assert.Equal(t, 1.645, s.ConfidenceSigma())
	assert.Equal(t, "station 4", s.SourceName())
}

func TestSampleFromFieldsRejectsUnknownKeys(t *testing.T) {
	_, err := SampleFromFields(map[string]string{
		"type":      "seawater",
		"flow_rate": "50",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
	fields, _ := apperrors.ContextValue(err, "fields")
	assert.Equal(t, []string{"flow_rate"}, fields)
}

func TestSampleFromFieldsRejectsDuplicateAliases(t *testing.T) {
	base := map[string]string{
		"type":               "seawater",
		"process":            "UF",
		"collection_date":    "20200420 120000",
		"analysis_date":      "20200422 093000",
		"sample_source_name": "s",
		"tube_count":         "12",
		"volume_per_tube":    "0.2",
	}

	tests := []struct {
		name  string
		extra map[string]string
		field string
		keys  string
	}{
		{
			name:  "sigma twice",
			extra: map[string]string{"sigma": "1.645", "confidence_sigma": "1.96"},
			field: "confidence_sigma",
			keys:  "confidence_sigma, sigma",
		},
		{
			name:  "type twice",
			extra: map[string]string{"sample_type": "aerosol"},
			field: "type",
			keys:  "sample_type, type",
		},
		{
			name:  "same alias spelled differently",
			extra: map[string]string{"Tube Count": "12"},
			field: "tube_count",
			keys:  "Tube Count, tube_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := make(map[string]string, len(base)+len(tt.extra))
			for k, v := range base {
				fields[k] = v
			}
			for k, v := range tt.extra {
				fields[k] = v
			}

			for i := 0; i < 5; i++ {
				_, err := SampleFromFields(fields)
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
				field, _ := apperrors.ContextValue(err, "field")
				value, _ := apperrors.ContextValue(err, "value")
				assert.Equal(t, tt.field, field)
				assert.Equal(t, tt.keys, value)
			}
		})
	}
}

func TestSampleFromFieldsRejectsBadNumbers(t *testing.T) {
	fields := map[string]string{
		"type":               "seawater",
		"process":            "UF",
		"collection_date":    "20200420 120000",
		"analysis_date":      "20200422 093000",
		"sample_source_name": "s",
		"tube_count":         "12.5",
		"volume_per_tube":    "0.2",
	}
	_, err := SampleFromFields(fields)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)

	fields["tube_count"] = "12"
	fields["volume_per_tube"] = "a lot"
	_, err = SampleFromFields(fields)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2020, 4, 20, 12, 0, 0, 0, time.UTC)
	for _, in := range []string{"20200420 120000", "20200420 1200", "20200420120000", "2020-04-20 12:00:00", "2020-04-20T12:00:00Z"} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseTimestamp("200420_12_00")
	assert.Error(t, err)
}

func TestMetadataPairsOrder(t *testing.T) {
	s, err := NewSample(validInput())
	require.NoError(t, err)

	pairs := s.MetadataPairs("/raw/seawater/seawater_bubbler_UF_200420_1200.csv")
	assert.Equal(t, []string{
		"raw data source",
		"type",
		"location",
		"process",
		"sample source name",
		"sample collection date",
		"sample analysis date",
		"# tubes",
		"ml/tube",
		"issues",
		"sigma",
	}, pairs.Keys())
	assert.Equal(t, "/raw/seawater/seawater_bubbler_UF_200420_1200.csv", pairs[0].Value)
	assert.Equal(t, "20200420 120000", pairs[5].Value)
	assert.Equal(t, 32, pairs[7].Value)
	assert.Equal(t, 1.96, pairs[10].Value)
}
