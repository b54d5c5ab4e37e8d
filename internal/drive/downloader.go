package drive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how dataset files are pulled from a Drive folder.
type DownloadOptions struct {
	FolderPath  string
	DownloadDir string
	// ConvertXLSX stores workbooks as CSV so the local library holds one format.
	ConvertXLSX bool
}

// Downloader syncs a Drive folder into a local dataset directory.
type Downloader struct {
	service *Service
}

func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// DownloadFolder downloads every CSV/XLSX file of the folder and returns the
// local paths written.
func (d *Downloader) DownloadFolder(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.service.ListDatasetFiles(ctx, opts.FolderPath)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := d.service.DownloadFile(ctx, f.ID, &buf); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}

		path, err := writeLocal(opts, f.Name, &buf)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", f.Name).Str("path", path).Msg("drive dataset downloaded")
		localPaths = append(localPaths, path)
	}

	return localPaths, nil
}

func writeLocal(opts DownloadOptions, name string, buf *bytes.Buffer) (string, error) {
	name = filepath.Base(name)
	isXLSX := strings.EqualFold(filepath.Ext(name), ".xlsx")

	if isXLSX && opts.ConvertXLSX {
		var out bytes.Buffer
		if err := convertXLSXToCSV(buf, &out); err != nil {
			return "", fmt.Errorf("failed to convert %s to csv: %w", name, err)
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".csv"
		buf = &out
	}

	path := filepath.Join(opts.DownloadDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
