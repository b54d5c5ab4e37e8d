package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/drive"
	"github.com/andresuchdata/supplychain-brain/internal/ingest"
	"github.com/andresuchdata/supplychain-brain/internal/pipeline"
	"github.com/andresuchdata/supplychain-brain/internal/storage"
	"github.com/andresuchdata/supplychain-brain/pkg/logger"
	"github.com/urfave/cli/v2"
)

func runMigrate(c *cli.Context) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}
	if err := repo.Migrate(c.Context); err != nil {
		return err
	}
	logger.Log.Info().Msg("dataset library migrated")
	return nil
}

func runList(c *cli.Context) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}
	infos, err := repo.ListDatasets(c.Context)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Fprintf(c.App.Writer, "%-40s %8d rows  %s\n", info.Name, info.RowCount, info.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runImportFiles(c *cli.Context) error {
	paths := c.Args().Slice()
	if dir := c.String("dir"); dir != "" {
		found, err := datasetFiles(dir)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files to import")
	}
	if c.String("name") != "" && len(paths) > 1 {
		return fmt.Errorf("--name only applies to a single file")
	}

	jobs := make([]pipeline.Job, len(paths))
	for i, p := range paths {
		name := c.String("name")
		if name == "" {
			name = libraryName(p)
		}
		jobs[i] = pipeline.Job{Name: name, Ref: p}
	}

	load := func(ctx context.Context, job pipeline.Job) (*domain.Dataset, error) {
		f, err := os.Open(job.Ref)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ingest.Read(f, filepath.Base(job.Ref))
	}
	return importJobs(c, jobs, load)
}

func runImportObjects(c *cli.Context) error {
	objects, err := storage.NewMinioClient(config.Load().Storage)
	if err != nil {
		return err
	}
	infos, err := objects.ListObjects(c.Context, c.String("prefix"))
	if err != nil {
		return err
	}

	var jobs []pipeline.Job
	for _, info := range infos {
		if !isDatasetFile(info.Key) {
			continue
		}
		jobs = append(jobs, pipeline.Job{Name: libraryName(info.Key), Ref: info.Key})
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no dataset objects under prefix %q", c.String("prefix"))
	}

	load := func(ctx context.Context, job pipeline.Job) (*domain.Dataset, error) {
		rc, err := objects.OpenObject(ctx, job.Ref)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return ingest.Read(rc, filepath.Base(job.Ref))
	}
	return importJobs(c, jobs, load)
}

func runImportDrive(c *cli.Context) error {
	svc, err := drive.NewServiceFromConfig(c.Context, config.Load().Drive)
	if err != nil {
		return err
	}
	files, err := svc.ListDatasetFiles(c.Context, c.String("folder"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no dataset files in drive folder %q", c.String("folder"))
	}

	jobs := make([]pipeline.Job, len(files))
	for i, f := range files {
		jobs[i] = pipeline.Job{Name: libraryName(f.Name), Ref: f.ID}
	}

	load := func(ctx context.Context, job pipeline.Job) (*domain.Dataset, error) {
		name, rc, err := svc.Open(ctx, job.Ref)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return ingest.Read(rc, name)
	}
	return importJobs(c, jobs, load)
}

func runSyncDrive(c *cli.Context) error {
	svc, err := drive.NewServiceFromConfig(c.Context, config.Load().Drive)
	if err != nil {
		return err
	}
	written, err := drive.NewDownloader(svc).DownloadFolder(c.Context, drive.DownloadOptions{
		FolderPath:  c.String("folder"),
		DownloadDir: c.String("out"),
		ConvertXLSX: c.Bool("convert-xlsx"),
	})
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(c.App.Writer, p)
	}
	logger.Log.Info().Int("files", len(written)).Str("dir", c.String("out")).Msg("drive folder synced")
	return nil
}

func importJobs(c *cli.Context, jobs []pipeline.Job, load pipeline.Loader) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}
	if err := repo.Migrate(c.Context); err != nil {
		return err
	}

	save := func(ctx context.Context, ds *domain.Dataset) error {
		_, err := repo.SaveDataset(ctx, ds)
		return err
	}

	results := pipeline.Run(c.Context, pipeline.Config{WorkerCount: c.Int("workers")}, jobs, load, save)
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(c.App.Writer, "%-40s %8d rows %6d skipped  %s\n", r.Job.Name, r.Rows, r.Skipped, status)
	}
	if failed := pipeline.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(results))
	}
	return nil
}

func datasetFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isDatasetFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func isDatasetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// libraryName is the file name without directory or extension.
func libraryName(ref string) string {
	base := filepath.Base(ref)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
