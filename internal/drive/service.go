package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

type Service struct {
	srv *drive.Service
}

// NewService builds a read-only Drive client from service-account credentials.
func NewService(ctx context.Context, credentialsJSON []byte) (*Service, error) {
	jwt, err := google.JWTConfigFromJSON(credentialsJSON, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

// NewServiceFromConfig prefers inline JSON credentials over the credentials file.
func NewServiceFromConfig(ctx context.Context, cfg config.DriveConfig) (*Service, error) {
	creds := []byte(cfg.CredentialsJSON)
	if len(creds) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, fmt.Errorf("drive credentials must be provided")
		}
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
		creds = data
	}
	return NewService(ctx, creds)
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// IsDataset reports whether the file is a CSV or XLSX export.
func (f *File) IsDataset() bool {
	return isDatasetName(f.Name)
}

func isDatasetName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	call := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)")

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, &File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	return files, nil
}

// ListDatasetFiles lists the CSV/XLSX files of the folder at folderPath.
func (s *Service) ListDatasetFiles(ctx context.Context, folderPath string) ([]*File, error) {
	folderID, err := s.FindFolderByPath(ctx, folderPath)
	if err != nil {
		return nil, err
	}
	files, err := s.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if f.MimeType != folderMimeType && f.IsDataset() {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("unable to download file: %w", err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

// Open returns the file name and a stream of its contents. The caller closes
// the reader.
func (s *Service) Open(ctx context.Context, fileID string) (string, io.ReadCloser, error) {
	meta, err := s.srv.Files.Get(fileID).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to get file %s: %w", fileID, err)
	}
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return "", nil, fmt.Errorf("unable to download file: %w", err)
	}
	return meta.Name, resp.Body, nil
}

func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "root", nil
	}

	currentID := "root"
	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Q(folderQuery(currentID, folder)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}

func folderQuery(parentID, name string) string {
	escaped := strings.ReplaceAll(name, "'", "\\'")
	return fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
		parentID, escaped, folderMimeType)
}
