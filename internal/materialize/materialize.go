// Package materialize exports a file set into a scratch directory for
// an emulator or viewer, pulling missing blobs from the object store
// first.
package materialize

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/cloud"
	"github.com/zorrokid/emulation-file-manager/internal/contentstore"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/pipeline"
	"github.com/zorrokid/emulation-file-manager/internal/report"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// downloadWorkers bounds concurrent blob downloads
const downloadWorkers = 4

// Connector opens the object-store session on demand, so purely local
// materialization never touches credentials
type Connector func(ctx context.Context) (cloud.ObjectStore, error)

// Context is the materialize pipeline state
type Context struct {
	FileSetID int64
	// ExtractFiles controls the export shape: true decompresses each
	// member under its original name, false packs a multi-member set
	// into one container ZIP
	ExtractFiles bool
	TempDir      string
	// EntryPoint is the caller's choice when the set has several members
	EntryPoint string

	Catalog *catalog.Store
	Content *contentstore.Store
	FS      fsys.FileSystem
	Connect Connector

	Progress chan<- report.Progress

	// intermediate state
	FileSet *catalog.FileSet
	Members []catalog.FileSetFile
	Missing []catalog.FileSetFile
	Remote  cloud.ObjectStore

	// outputs
	OutputFiles []string
	OutputEntry string
}

// Result is the materialized file list and its entry point
type Result struct {
	Files      []string
	EntryPoint string
}

// Run executes the materialize pipeline
func Run(ctx context.Context, c *Context) (*Result, error) {
	p := pipeline.New[Context]("materialize",
		stepFetchFileSet{},
		stepFetchMembers{},
		stepPrepareForDownload{},
		stepConnectToCloud{},
		stepDownloadFiles{},
		stepExportFiles{},
		stepPrepareThumbnails{},
	)
	if err := p.Run(ctx, c); err != nil {
		return nil, err
	}
	return &Result{Files: c.OutputFiles, EntryPoint: c.OutputEntry}, nil
}

type stepFetchFileSet struct{}

func (stepFetchFileSet) Name() string { return "FetchFileSet" }
func (stepFetchFileSet) ShouldExecute(*Context) bool { return true }

func (stepFetchFileSet) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	fs, err := c.Catalog.GetFileSet(c.FileSetID)
	if err != nil {
		return pipeline.Abort, err
	}
	c.FileSet = fs
	return pipeline.Continue, nil
}

type stepFetchMembers struct{}

func (stepFetchMembers) Name() string { return "FetchMembers" }
func (stepFetchMembers) ShouldExecute(*Context) bool { return true }

func (stepFetchMembers) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	members, err := c.Catalog.GetFileSetFiles(c.FileSetID)
	if err != nil {
		return pipeline.Abort, err
	}
	if len(members) == 0 {
		return pipeline.Skip, nil
	}
	c.Members = members
	return pipeline.Continue, nil
}

type stepPrepareForDownload struct{}

func (stepPrepareForDownload) Name() string { return "PrepareForDownload" }
func (stepPrepareForDownload) ShouldExecute(*Context) bool { return true }

func (stepPrepareForDownload) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	for _, m := range c.Members {
		present, err := c.Content.Exists(m.FileType, m.ArchiveFileName)
		if err != nil {
			return pipeline.Abort, err
		}
		if !present {
			c.Missing = append(c.Missing, m)
		}
	}
	return pipeline.Continue, nil
}

type stepConnectToCloud struct{}

func (stepConnectToCloud) Name() string { return "ConnectToCloud" }

func (stepConnectToCloud) ShouldExecute(c *Context) bool {
	return len(c.Missing) > 0 && c.Remote == nil
}

func (stepConnectToCloud) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	if c.Connect == nil {
		return pipeline.Abort, fmt.Errorf("blobs missing locally and no cloud configured: %w", util.ErrNotFound)
	}
	remote, err := c.Connect(ctx)
	if err != nil {
		return pipeline.Abort, err
	}
	c.Remote = remote
	return pipeline.Continue, nil
}

type stepDownloadFiles struct{}

func (stepDownloadFiles) Name() string { return "DownloadFiles" }

func (stepDownloadFiles) ShouldExecute(c *Context) bool {
	return len(c.Missing) > 0
}

func (stepDownloadFiles) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(downloadWorkers)
	for _, m := range c.Missing {
		member := m
		p.Go(func(ctx context.Context) error {
			return downloadOne(ctx, c, member)
		})
	}
	if err := p.Wait(); err != nil {
		return pipeline.Abort, err
	}
	return pipeline.Continue, nil
}

// downloadOne streams one cloud object to its deterministic blob path
// and verifies the content hash before accepting it
func downloadOne(ctx context.Context, c *Context, m catalog.FileSetFile) error {
	key := contentstore.CloudKey(m.FileType, m.ArchiveFileName)
	report.Publish(c.Progress, report.Progress{Kind: report.ProgressStarted, Name: m.FileName})

	obj, err := util.RetryWithBackoff(util.DefaultRetryConfig(), func() (io.ReadCloser, error) {
		return c.Remote.Download(ctx, key)
	}, "download "+key)
	if err != nil {
		report.Publish(c.Progress, report.Progress{Kind: report.ProgressFailed, Name: m.FileName, Err: err})
		return fmt.Errorf("failed to download %s: %w", m.FileName, err)
	}
	defer obj.Close()

	if err := c.Content.ImportRaw(ctx, m.FileType, m.ArchiveFileName, obj); err != nil {
		report.Publish(c.Progress, report.Progress{Kind: report.ProgressFailed, Name: m.FileName, Err: err})
		return err
	}

	if err := c.Content.VerifySHA1(ctx, m.FileType, m.ArchiveFileName, m.SHA1); err != nil {
		c.Content.Remove(m.FileType, m.ArchiveFileName)
		report.Publish(c.Progress, report.Progress{Kind: report.ProgressFailed, Name: m.FileName, Err: err})
		return err
	}

	report.Publish(c.Progress, report.Progress{Kind: report.ProgressCompleted, Name: m.FileName})
	return nil
}

type stepExportFiles struct{}

func (stepExportFiles) Name() string { return "ExportFiles" }
func (stepExportFiles) ShouldExecute(*Context) bool { return true }

func (stepExportFiles) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	if !c.ExtractFiles && len(c.Members) > 1 {
		return exportContainer(ctx, c)
	}

	for _, m := range c.Members {
		destPath := filepath.Join(c.TempDir, m.FileName)
		if err := c.Content.Export(ctx, m.FileType, m.ArchiveFileName, destPath); err != nil {
			return pipeline.Abort, err
		}
		c.OutputFiles = append(c.OutputFiles, m.FileName)
	}

	c.OutputEntry = c.EntryPoint
	if len(c.OutputFiles) == 1 {
		c.OutputEntry = c.OutputFiles[0]
	}
	return pipeline.Continue, nil
}

// exportContainer packs every member into one ZIP for emulators that
// take the whole set as a single archive
func exportContainer(ctx context.Context, c *Context) (pipeline.Action, error) {
	containerName := c.FileSet.FileSetName + ".zip"
	destPath := filepath.Join(c.TempDir, containerName)

	f, err := c.FS.Create(destPath)
	if err != nil {
		return pipeline.Abort, err
	}
	zw := zip.NewWriter(f)

	for _, m := range c.Members {
		if err := ctx.Err(); err != nil {
			zw.Close()
			f.Close()
			c.FS.RemoveFile(destPath)
			return pipeline.Abort, util.ErrCancelled
		}

		src, err := c.Content.Open(m.FileType, m.ArchiveFileName)
		if err != nil {
			zw.Close()
			f.Close()
			c.FS.RemoveFile(destPath)
			return pipeline.Abort, err
		}
		w, err := zw.Create(m.FileName)
		if err == nil {
			_, err = io.Copy(w, src)
		}
		src.Close()
		if err != nil {
			zw.Close()
			f.Close()
			c.FS.RemoveFile(destPath)
			return pipeline.Abort, fmt.Errorf("failed to pack %s: %w", m.FileName, err)
		}
	}

	if err := zw.Close(); err == nil {
		err = f.Close()
	} else {
		f.Close()
	}
	if err != nil {
		c.FS.RemoveFile(destPath)
		return pipeline.Abort, err
	}

	c.OutputFiles = []string{containerName}
	c.OutputEntry = containerName
	return pipeline.Continue, nil
}

type stepPrepareThumbnails struct{}

func (stepPrepareThumbnails) Name() string { return "PrepareThumbnails" }

func (stepPrepareThumbnails) ShouldExecute(c *Context) bool {
	return c.FileSet != nil && c.FileSet.FileType.IsImage()
}

func (stepPrepareThumbnails) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	for _, m := range c.Members {
		if err := ensureThumbnail(c, m); err != nil {
			// a bad image spoils its thumbnail, not the materialization
			util.WarnLog("materialize: failed to build thumbnail for %s: %v", m.FileName, err)
		}
	}
	return pipeline.Continue, nil
}
