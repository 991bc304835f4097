package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	// ErrUnknownFormat is returned for files that are no known dictionary format.
	ErrUnknownFormat = errors.New("unknown dictionary format")
	// ErrEmptyDictionary is returned when sources hold no usable pattern.
	ErrEmptyDictionary = errors.New("dictionary has no patterns")
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatTOML                // [[pattern]] tables
	FormatText                // one pattern per line
	FormatSnapshot            // compiled msgpack snapshot
)

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// snapshotMagic prefixes every snapshot file.
var snapshotMagic = []byte("TSNP")

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatTOML: {
		Format:      FormatTOML,
		Description: "TOML Pattern Dictionary",
		Extensions:  []string{".toml"},
		MinSize:     1,
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Pattern List",
		Extensions:  []string{".txt"},
		MinSize:     1,
	},
	FormatSnapshot: {
		Format:      FormatSnapshot,
		Description: "Compiled Dictionary Snapshot",
		Extensions:  []string{".tsnap"},
		MinSize:     int64(len(snapshotMagic)) + 1,
	},
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("%w: %d", ErrUnknownFormat, expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	if expectedFormat == FormatSnapshot {
		return validateSnapshotHeader(filename)
	}
	return validateTextFormat(filename)
}

func validateSnapshotHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	header := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(file, header); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if !bytes.Equal(header, snapshotMagic) {
		return fmt.Errorf("file %s has no snapshot header", filename)
	}
	log.Debugf("Snapshot %s validated", filename)
	return nil
}

func validateTextFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	buffer := make([]byte, 1024)
	n, err := file.Read(buffer)
	if err != nil {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}
	if bytes.IndexByte(buffer[:n], 0) >= 0 {
		return fmt.Errorf("file %s looks binary", filename)
	}
	return nil
}

// DetectFileFormat detects the format of a dictionary file by extension and
// validates its header. Files of no known format yield ErrUnknownFormat.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e != ext {
				continue
			}
			if err := ValidateFileFormat(filename, format); err != nil {
				return FormatUnknown, err
			}
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// hasKnownExtension reports whether path could hold a dictionary.
func hasKnownExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return true
			}
		}
	}
	return false
}
