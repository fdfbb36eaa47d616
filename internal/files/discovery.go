package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "inpcalc/internal/errors"
	"inpcalc/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// RawFile is a raw data file whose name follows the naming convention
type RawFile struct {
	FileInfo
	Key         Key
	CollectedAt time.Time
}

// Discovery lists raw data files under the raw root
type Discovery struct {
	naming Naming
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(naming Naming, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{naming: naming, logger: logger.With("component", "discovery")}
}

// FindRawFiles lists the raw files of one sample type, oldest collection first.
// Files whose names do not parse are skipped.
func (d *Discovery) FindRawFiles(sampleType domain.SampleType) ([]RawFile, error) {
	dir := filepath.Join(d.naming.RawRoot, string(sampleType))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.SourceNotFound(dir, fmt.Errorf("failed to read directory: %w", err))
	}

	suffix := "." + strings.ToLower(d.naming.RawExtension)
	var files []RawFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}

		key, err := ParseBaseName(name)
		if err != nil {
			d.logger.Debug("Skipping file with unrecognised name",
				slog.String("file", name),
				slog.String("reason", err.Error()))
			continue
		}
		if key.Type != sampleType {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		collected, _ := key.CollectedAt()

		files = append(files, RawFile{
			FileInfo: FileInfo{
				Path:    filepath.Join(dir, name),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			},
			Key:         key,
			CollectedAt: collected,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].CollectedAt.Equal(files[j].CollectedAt) {
			return files[i].CollectedAt.Before(files[j].CollectedAt)
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// HasReport reports whether the calculated report for key already exists
func (d *Discovery) HasReport(key Key) bool {
	info, err := os.Stat(d.naming.ReportPath(key))
	return err == nil && !info.IsDir()
}

// GetLatestFile returns the raw file with the latest collection time
func GetLatestFile(files []RawFile) (RawFile, bool) {
	if len(files) == 0 {
		return RawFile{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.CollectedAt.After(latest.CollectedAt) {
			latest = file
		}
	}

	return latest, true
}

// FilterFilesByDateRange keeps files collected within [start, end]
func FilterFilesByDateRange(files []RawFile, start, end time.Time) []RawFile {
	var filtered []RawFile
	for _, file := range files {
		if !file.CollectedAt.Before(start) && !file.CollectedAt.After(end) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}
