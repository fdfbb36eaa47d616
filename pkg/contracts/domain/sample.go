package domain

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "inpcalc/internal/errors"
)

// SampleType identifies what was sampled
type SampleType string

const (
	SampleTypeSeawater SampleType = "seawater"
	SampleTypeAerosol  SampleType = "aerosol"
)

// Location identifies the aerosol collection apparatus
type Location string

const (
	LocationNone     Location = ""
	LocationBubbler  Location = "bubbler"
	LocationCoriolis Location = "coriolis"
)

// DefaultConfidenceSigma is the z value used for confidence intervals when none is given
const DefaultConfidenceSigma = 1.96

// Accepted collection/analysis timestamp layouts, most specific first
var timestampLayouts = []string{
	"20060102 150405",
	"20060102 1504",
	"20060102150405",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02",
	"20060102",
}

// SampleInput is the external, unvalidated form of a sample's metadata as it
// arrives from a YAML file, CLI flags or a metadata workbook row.
type SampleInput struct {
	Type             string   `yaml:"type" json:"type" validate:"required,oneof=seawater aerosol"`
	Location         string   `yaml:"location" json:"location,omitempty" validate:"omitempty,oneof=bubbler coriolis"`
	Process          string   `yaml:"process" json:"process" validate:"required"`
	CollectionDate   string   `yaml:"collection_date" json:"collection_date" validate:"required"`
	AnalysisDate     string   `yaml:"analysis_date" json:"analysis_date" validate:"required"`
	SampleSourceName string   `yaml:"sample_source_name" json:"sample_source_name" validate:"required"`
	TubeCount        *int     `yaml:"tube_count" json:"tube_count" validate:"required,gte=0"`
	VolumePerTube    *float64 `yaml:"volume_per_tube" json:"volume_per_tube" validate:"required,gte=0"`
	Issues           string   `yaml:"issues" json:"issues,omitempty"`
	ConfidenceSigma  *float64 `yaml:"confidence_sigma" json:"confidence_sigma,omitempty" validate:"omitempty,gt=0"`
}

// Sample is the validated metadata record for one sample run.
// It is immutable once constructed.
type Sample struct {
	sampleType        SampleType
	location          Location
	process           string
	collectionDate    time.Time
	collectionDateRaw string
	analysisDate      time.Time
	analysisDateRaw   string
	sourceName        string
	tubeCount         int
	volumePerTube     float64
	issues            string
	sigma             float64
}

var (
	sampleValidator     *validator.Validate
	sampleValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	sampleValidatorOnce.Do(func() {
		v := validator.New()
		// Use YAML tag names in error reporting so field names match the input
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		sampleValidator = v
	})
	return sampleValidator
}

// NewSample validates in and builds a Sample. Every missing required field is
// reported at once as MissingMetadataField.
func NewSample(in SampleInput) (*Sample, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Location = strings.ToLower(strings.TrimSpace(in.Location))
	in.Process = strings.TrimSpace(in.Process)
	in.CollectionDate = strings.TrimSpace(in.CollectionDate)
	in.AnalysisDate = strings.TrimSpace(in.AnalysisDate)
	in.SampleSourceName = strings.TrimSpace(in.SampleSourceName)

	if err := getValidator().Struct(in); err != nil {
		return nil, translateValidationError(err)
	}

	if SampleType(in.Type) == SampleTypeAerosol && in.Location == "" {
		return nil, apperrors.MissingMetadataField("location")
	}

	collected, err := ParseTimestamp(in.CollectionDate)
	if err != nil {
		return nil, apperrors.InvalidMetadata("collection_date", in.CollectionDate, err.Error())
	}
	analysed, err := ParseTimestamp(in.AnalysisDate)
	if err != nil {
		return nil, apperrors.InvalidMetadata("analysis_date", in.AnalysisDate, err.Error())
	}

	sigma := DefaultConfidenceSigma
	if in.ConfidenceSigma != nil {
		sigma = *in.ConfidenceSigma
	}

	return &Sample{
		sampleType:        SampleType(in.Type),
		location:          Location(in.Location),
		process:           in.Process,
		collectionDate:    collected,
		collectionDateRaw: in.CollectionDate,
		analysisDate:      analysed,
		analysisDateRaw:   in.AnalysisDate,
		sourceName:        in.SampleSourceName,
		tubeCount:         *in.TubeCount,
		volumePerTube:     *in.VolumePerTube,
		issues:            in.Issues,
		sigma:             sigma,
	}, nil
}

func translateValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.New(apperrors.KindInvalidMetadata, "metadata validation failed", err)
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperrors.MissingMetadataField(missing...)
	}

	fe := verrs[0]
	value := fe.Value()
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		value = rv.Elem().Interface()
	}
	reason := fe.Tag()
	if fe.Param() != "" {
		reason = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return apperrors.InvalidMetadata(fe.Field(), value, "failed "+reason)
}

// fieldAliases maps accepted spellings onto the canonical metadata keys
var fieldAliases = map[string]string{
	"type":                   "type",
	"type_":                  "type",
	"sample_type":            "type",
	"location":               "location",
	"process":                "process",
	"collection_date":        "collection_date",
	"sample_collection_date": "collection_date",
	"analysis_date":          "analysis_date",
	"sample_analysis_date":   "analysis_date",
	"sample_source_name":     "sample_source_name",
	"sample_name":            "sample_source_name",
	"tube_count":             "tube_count",
	"num_tubes":              "tube_count",
	"#_tubes":                "tube_count",
	"volume_per_tube":        "volume_per_tube",
	"vol_tube":               "volume_per_tube",
	"ml/tube":                "volume_per_tube",
	"issues":                 "issues",
	"confidence_sigma":       "confidence_sigma",
	"sigma":                  "confidence_sigma",
}

// canonicalFields lists the canonical metadata names in record order
var canonicalFields = []string{
	"type", "location", "process", "collection_date", "analysis_date",
	"sample_source_name", "tube_count", "volume_per_tube", "issues", "confidence_sigma",
}

// NormalizeFieldName maps a metadata key to its canonical name.
// The second result is false for keys the record does not define.
func NormalizeFieldName(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.Join(strings.Fields(k), "_")
	canonical, ok := fieldAliases[k]
	return canonical, ok
}

// SampleFromFields builds a Sample from string key/value metadata, such as a
// row of a metadata workbook. Unknown keys are rejected; empty values count
// as absent.
func SampleFromFields(fields map[string]string) (*Sample, error) {
	var unknown []string
	values := make(map[string]string, len(fields))
	seen := make(map[string][]string, len(fields))
	for key, value := range fields {
		canonical, ok := NormalizeFieldName(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		seen[canonical] = append(seen[canonical], key)
		values[canonical] = strings.TrimSpace(value)
	}
	if len(unknown) > 0 {
		return nil, apperrors.UnknownMetadataField(unknown...)
	}
	for _, canonical := range canonicalFields {
		if keys := seen[canonical]; len(keys) > 1 {
			sort.Strings(keys)
			return nil, apperrors.InvalidMetadata(canonical, strings.Join(keys, ", "), "given more than once")
		}
	}

	in := SampleInput{
		Type:             values["type"],
		Location:         values["location"],
		Process:          values["process"],
		CollectionDate:   values["collection_date"],
		AnalysisDate:     values["analysis_date"],
		SampleSourceName: values["sample_source_name"],
		Issues:           values["issues"],
	}

	if raw := values["tube_count"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			// Workbooks store integers as floats ("12.0")
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil || f != float64(int(f)) {
				return nil, apperrors.InvalidMetadata("tube_count", raw, "not an integer")
			}
			n = int(f)
		}
		in.TubeCount = &n
	}
	if raw := values["volume_per_tube"]; raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.InvalidMetadata("volume_per_tube", raw, "not a number")
		}
		in.VolumePerTube = &f
	}
	if raw := values["confidence_sigma"]; raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.InvalidMetadata("confidence_sigma", raw, "not a number")
		}
		in.ConfidenceSigma = &f
	}

	return NewSample(in)
}

// ParseTimestamp parses an instrument timestamp in any accepted layout
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func (s *Sample) Type() SampleType { return s.sampleType }
func (s *Sample) Location() Location { return s.location }
func (s *Sample) Process() string { return s.process }
func (s *Sample) CollectionDate() time.Time { return s.collectionDate }
func (s *Sample) AnalysisDate() time.Time { return s.analysisDate }
func (s *Sample) SourceName() string { return s.sourceName }
func (s *Sample) TubeCount() int { return s.tubeCount }
func (s *Sample) VolumePerTube() float64 { return s.volumePerTube }
func (s *Sample) Issues() string { return s.issues }
func (s *Sample) ConfidenceSigma() float64 { return s.sigma }

// String identifies the sample in logs
func (s *Sample) String() string {
	parts := []string{string(s.sampleType)}
	if s.location != LocationNone {
		parts = append(parts, string(s.location))
	}
	parts = append(parts, s.process, s.collectionDateRaw)
	return strings.Join(parts, "/")
}

// MetadataPair is one key/value row written into a report's result sheets
type MetadataPair struct {
	Key   string
	Value interface{}
}

// OrderedMetadata is a sequence of key/value pairs emitted in slice order
type OrderedMetadata []MetadataPair

// Keys returns the keys in emission order
func (m OrderedMetadata) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Key
	}
	return keys
}

// MetadataPairs returns the report metadata in its fixed emission order.
// rawSource is the located raw data file.
func (s *Sample) MetadataPairs(rawSource string) OrderedMetadata {
	return OrderedMetadata{
		{Key: "raw data source", Value: rawSource},
		{Key: "type", Value: string(s.sampleType)},
		{Key: "location", Value: string(s.location)},
		{Key: "process", Value: s.process},
		{Key: "sample source name", Value: s.sourceName},
		{Key: "sample collection date", Value: s.collectionDateRaw},
		{Key: "sample analysis date", Value: s.analysisDateRaw},
		{Key: "# tubes", Value: s.tubeCount},
		{Key: "ml/tube", Value: s.volumePerTube},
		{Key: "issues", Value: s.issues},
		{Key: "sigma", Value: s.sigma},
	}
}
