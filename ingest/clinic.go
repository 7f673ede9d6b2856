package ingest

import (
	"path"
	"strings"

	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/reports"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var uiUploadRoots = []string{"public/", "private/"}

// ClinicResolver derives the tenant of an upload from its object key
type ClinicResolver struct {
	prefixes []string
}

func NewClinicResolver(cfg *config.Config) *ClinicResolver {
	prefixes := make([]string, 0, len(cfg.UploadPrefixes))
	for _, p := range cfg.UploadPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			if !strings.HasSuffix(p, "/") {
				p += "/"
			}
			prefixes = append(prefixes, p)
		}
	}
	return &ClinicResolver{prefixes: prefixes}
}

// Resolve returns the clinic id from the row data if present, otherwise the path
// segment following a recognized upload prefix, otherwise "unknown"
func (c *ClinicResolver) Resolve(rowClinicId string, key string) string {
	if clinicId := strings.TrimSpace(rowClinicId); clinicId != "" {
		return clinicId
	}
	if clinicId, ok := c.fromKey(key); ok {
		return clinicId
	}
	return reports.UnknownClinicId
}

func (c *ClinicResolver) fromKey(key string) (string, bool) {
	for _, prefix := range c.prefixes {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		segment, remainder, found := strings.Cut(rest, "/")
		if found && segment != "" && remainder != "" {
			return segment, true
		}
	}
	return "", false
}

// IsUpload returns true if the key is under a recognized upload prefix
func (c *ClinicResolver) IsUpload(key string) bool {
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Source classifies browser uploads apart from command line uploads
func Source(key string) string {
	for _, root := range uiUploadRoots {
		if strings.HasPrefix(key, root) {
			return reports.SourceUIUpload
		}
	}
	return reports.SourceCLIUpload
}

// FormatOf returns the export format of the object or an empty format if it is not supported
func FormatOf(key string) Format {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	default:
		return ""
	}
}
