package files

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"inpcalc/pkg/contracts/domain"
)

const (
	// DateLayout formats the collection date token of a raw file name (YYMMDD)
	DateLayout = "060102"
	// TimeLayout formats the collection time token of a raw file name (HHMM)
	TimeLayout = "1504"
	// ReportSuffix marks a calculated report
	ReportSuffix = "_calculated"
)

// Key identifies one sample run's files. Raw data and report share it.
type Key struct {
	Type     domain.SampleType
	Location domain.Location
	Process  string
	Date     string // YYMMDD
	Time     string // HHMM
}

// KeyFor derives the naming key from a sample's parsed collection date
func KeyFor(s *domain.Sample) Key {
	collected := s.CollectionDate()
	return Key{
		Type:     s.Type(),
		Location: s.Location(),
		Process:  s.Process(),
		Date:     collected.Format(DateLayout),
		Time:     collected.Format(TimeLayout),
	}
}

// BaseName returns <type>_<location>_<process>_<date>_<time>.
// An empty location drops its token.
func (k Key) BaseName() string {
	tokens := []string{string(k.Type)}
	if k.Location != domain.LocationNone {
		tokens = append(tokens, string(k.Location))
	}
	tokens = append(tokens, k.Process, k.Date, k.Time)
	return strings.Join(tokens, "_")
}

// CollectedAt returns the minute-resolution collection time encoded in the key
func (k Key) CollectedAt() (time.Time, error) {
	return time.Parse(DateLayout+" "+TimeLayout, k.Date+" "+k.Time)
}

// ParseBaseName is the inverse of BaseName. The extension and the report
// suffix, if present, are ignored.
func ParseBaseName(name string) (Key, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, ReportSuffix)

	tokens := strings.Split(base, "_")
	if len(tokens) < 4 {
		return Key{}, fmt.Errorf("file name %q has too few tokens", name)
	}

	k := Key{Type: domain.SampleType(tokens[0])}
	switch k.Type {
	case domain.SampleTypeSeawater, domain.SampleTypeAerosol:
	default:
		return Key{}, fmt.Errorf("file name %q has unknown sample type %q", name, tokens[0])
	}

	rest := tokens[1:]
	switch domain.Location(rest[0]) {
	case domain.LocationBubbler, domain.LocationCoriolis:
		k.Location = domain.Location(rest[0])
		rest = rest[1:]
	}
	if len(rest) < 3 {
		return Key{}, fmt.Errorf("file name %q is missing process, date or time", name)
	}

	k.Date = rest[len(rest)-2]
	k.Time = rest[len(rest)-1]
	k.Process = strings.Join(rest[:len(rest)-2], "_")
	if k.Process == "" {
		return Key{}, fmt.Errorf("file name %q has an empty process", name)
	}
	if _, err := k.CollectedAt(); err != nil {
		return Key{}, fmt.Errorf("file name %q has an invalid date/time: %w", name, err)
	}
	return k, nil
}

// Naming resolves raw and report paths under their roots
type Naming struct {
	RawRoot         string
	OutputRoot      string
	RawExtension    string
	ReportExtension string
}

// RawPath returns <raw_root>/<type>/<base>.<raw_ext>
func (n Naming) RawPath(k Key) string {
	return filepath.Join(n.RawRoot, string(k.Type), k.BaseName()+"."+n.RawExtension)
}

// ReportDir returns <output_root>/<type>/<location>
func (n Naming) ReportDir(k Key) string {
	if k.Location == domain.LocationNone {
		return filepath.Join(n.OutputRoot, string(k.Type))
	}
	return filepath.Join(n.OutputRoot, string(k.Type), string(k.Location))
}

// ReportPath returns <output_root>/<type>/<location>/<base>_calculated.<report_ext>
func (n Naming) ReportPath(k Key) string {
	return filepath.Join(n.ReportDir(k), k.BaseName()+ReportSuffix+"."+n.ReportExtension)
}
