package files

import (
	"log/slog"

	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/validation"
	"inpcalc/pkg/contracts/domain"
)

// Source is a located raw data file and the fields derived for it
type Source struct {
	Key  Key
	Path string
	Date string
	Time string
}

// Locator resolves a sample to its raw data file
type Locator struct {
	naming    Naming
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewLocator creates a locator over naming
func NewLocator(naming Naming, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		naming:    naming,
		validator: validation.NewFileValidator(logger),
		logger:    logger.With("component", "locator"),
	}
}

// Resolve returns the expected raw file without touching the file system
func (l *Locator) Resolve(s *domain.Sample) Source {
	key := KeyFor(s)
	return Source{
		Key:  key,
		Path: l.naming.RawPath(key),
		Date: key.Date,
		Time: key.Time,
	}
}

// Locate resolves the raw file and checks it is a readable file.
// It fails with SourceNotFound carrying the resolved path.
func (l *Locator) Locate(s *domain.Sample) (Source, error) {
	src := l.Resolve(s)

	if err := l.validator.ValidateFile(src.Path); err != nil {
		return Source{}, apperrors.SourceNotFound(src.Path, err)
	}

	l.logger.Debug("Raw source located",
		slog.String("path", src.Path),
		slog.String("date", src.Date),
		slog.String("time", src.Time))
	return src, nil
}
