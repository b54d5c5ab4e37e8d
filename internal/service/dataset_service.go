package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/ingest"
	"github.com/andresuchdata/supplychain-brain/internal/storage"
	"github.com/rs/zerolog/log"
)

// Dataset sources accepted by Load.
const (
	SourceFile    = "file"
	SourceObject  = "object"
	SourceDrive   = "drive"
	SourceLibrary = "library"
)

const uploadPrefix = "uploads/"

// DriveSource opens a Drive file by id.
type DriveSource interface {
	Open(ctx context.Context, fileID string) (string, io.ReadCloser, error)
}

// DatasetLibrary is the shared dataset store seeded by the import CLI.
type DatasetLibrary interface {
	ListDatasets(ctx context.Context) ([]domain.DatasetInfo, error)
	LoadDataset(ctx context.Context, name string) (*domain.Dataset, error)
}

type DatasetService struct {
	dataDir        string
	defaultDataset string
	objects        storage.ObjectStorage
	drive          DriveSource
	library        DatasetLibrary
}

// DatasetOption wires an optional source into the service.
type DatasetOption func(*DatasetService)

func WithObjectStorage(s storage.ObjectStorage) DatasetOption {
	return func(d *DatasetService) { d.objects = s }
}

func WithDrive(s DriveSource) DatasetOption {
	return func(d *DatasetService) { d.drive = s }
}

func WithLibrary(l DatasetLibrary) DatasetOption {
	return func(d *DatasetService) { d.library = l }
}

func NewDatasetService(dataDir, defaultDataset string, opts ...DatasetOption) *DatasetService {
	s := &DatasetService{dataDir: dataDir, defaultDataset: defaultDataset}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload parses an uploaded file. When object storage is configured the raw
// bytes are archived too; archiving failures are logged only.
func (s *DatasetService) Upload(ctx context.Context, filename string, data []byte) (*domain.Dataset, error) {
	name := filepath.Base(filename)
	ds, err := ingest.Read(bytes.NewReader(data), name)
	if err != nil {
		return nil, err
	}
	ds.Source = "upload:" + name

	if s.objects != nil {
		if err := s.objects.UploadObject(ctx, uploadPrefix+name, data); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("dataset: archive upload failed")
		}
	}
	return ds, nil
}

// Load reads a dataset from one of the configured sources.
func (s *DatasetService) Load(ctx context.Context, source, ref string) (*domain.Dataset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: ref is required", ErrInvalidInput)
	}

	var (
		ds  *domain.Dataset
		err error
	)
	switch strings.ToLower(source) {
	case SourceFile:
		ds, err = s.loadFile(ref)
	case SourceObject:
		ds, err = s.loadObject(ctx, ref)
	case SourceDrive:
		ds, err = s.loadDrive(ctx, ref)
	case SourceLibrary:
		if s.library == nil {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, SourceLibrary)
		}
		ds, err = s.library.LoadDataset(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, source)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("source", source).Str("ref", ref).Int("rows", ds.Len()).Msg("dataset loaded")
	return ds, nil
}

// Default loads the configured demo dataset from the data dir; nil when none is set.
func (s *DatasetService) Default() (*domain.Dataset, error) {
	if s.defaultDataset == "" {
		return nil, nil
	}
	return s.loadFile(s.defaultDataset)
}

// ListLibrary lists datasets of the shared library.
func (s *DatasetService) ListLibrary(ctx context.Context) ([]domain.DatasetInfo, error) {
	if s.library == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, SourceLibrary)
	}
	return s.library.ListDatasets(ctx)
}

// ListObjects lists dataset files in object storage.
func (s *DatasetService) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if s.objects == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, SourceObject)
	}
	return s.objects.ListObjects(ctx, prefix)
}

func (s *DatasetService) loadFile(ref string) (*domain.Dataset, error) {
	path, err := s.resolvePath(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", ref, err)
	}
	defer f.Close()

	ds, err := ingest.Read(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	ds.Source = SourceFile + ":" + ref
	return ds, nil
}

// resolvePath keeps file references inside the data dir.
func (s *DatasetService) resolvePath(ref string) (string, error) {
	root, err := filepath.Abs(s.dataDir)
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	path := filepath.Join(root, filepath.Clean("/"+ref))
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes data dir", ErrInvalidInput)
	}
	return path, nil
}

func (s *DatasetService) loadObject(ctx context.Context, key string) (*domain.Dataset, error) {
	if s.objects == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, SourceObject)
	}
	body, err := s.objects.OpenObject(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	ds, err := ingest.Read(body, key)
	if err != nil {
		return nil, err
	}
	ds.Source = SourceObject + ":" + key
	return ds, nil
}

func (s *DatasetService) loadDrive(ctx context.Context, fileID string) (*domain.Dataset, error) {
	if s.drive == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, SourceDrive)
	}
	name, body, err := s.drive.Open(ctx, fileID)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	ds, err := ingest.Read(body, name)
	if err != nil {
		return nil, err
	}
	ds.Source = SourceDrive + ":" + fileID
	return ds, nil
}
