// Package ingest turns a prepared input into catalog rows and stored
// blobs. New content is compressed into the content store; the catalog
// update is one transaction, with blob writes compensated on failure.
package ingest

import (
	"context"

	"github.com/zorrokid/emulation-file-manager/internal/archive"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/contentstore"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/pipeline"
	"github.com/zorrokid/emulation-file-manager/internal/prepare"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// ImportedFile records one blob written during this run
type ImportedFile struct {
	OriginalName string
	ArchiveName  string
	Size         int64
}

// Context is the ingest pipeline state
type Context struct {
	InputPath string
	FileType  filetype.FileType
	Source    string

	Prepared *prepare.Result
	// Selected restricts ingestion to these entry names; empty means
	// every prepared entry
	Selected []string

	SystemIDs []int64
	Release   *catalog.ReleaseRequest
	ItemIDs   []int64
	DatFileID int64

	Reader  *archive.Reader
	Content *contentstore.Store
	Catalog *catalog.Store

	// outputs
	Imported map[string]ImportedFile // sha1 -> blob written this run
	Result   *catalog.InsertFileSetResult
}

// Run executes the ingest pipeline
func Run(ctx context.Context, c *Context) (*catalog.InsertFileSetResult, error) {
	p := pipeline.New[Context]("ingest",
		stepImportFiles{},
		stepUpdateDatabase{},
		stepLinkItems{},
		stepLinkDat{},
	)
	if err := p.Run(ctx, c); err != nil {
		return nil, err
	}
	return c.Result, nil
}

// selectedEntries filters the prepared entries down to the selection
func (c *Context) selectedEntries() []prepare.Entry {
	if len(c.Selected) == 0 {
		return c.Prepared.Entries
	}
	wanted := make(map[string]bool, len(c.Selected))
	for _, name := range c.Selected {
		wanted[name] = true
	}
	var entries []prepare.Entry
	for _, e := range c.Prepared.Entries {
		if wanted[e.Name] {
			entries = append(entries, e)
		}
	}
	return entries
}

// removeImported deletes the blobs written during this run,
// compensating a failed catalog update. Secondary errors are logged,
// not surfaced.
func (c *Context) removeImported() {
	for sha1, imp := range c.Imported {
		if err := c.Content.Remove(c.FileType, imp.ArchiveName); err != nil {
			util.WarnLog("ingest: failed to remove blob %s for %s: %v", imp.ArchiveName, sha1, err)
		}
	}
}

type stepImportFiles struct{}

func (stepImportFiles) Name() string { return "ImportFiles" }
func (stepImportFiles) ShouldExecute(*Context) bool { return true }

func (stepImportFiles) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	entries := c.selectedEntries()
	if len(entries) == 0 {
		return pipeline.Skip, nil
	}

	c.Imported = make(map[string]ImportedFile)
	for _, e := range entries {
		if e.Classification == prepare.Existing {
			continue
		}
		if _, done := c.Imported[e.SHA1]; done {
			continue
		}

		src, err := c.Reader.OpenEntry(c.InputPath, e.Name)
		if err != nil {
			c.removeImported()
			return pipeline.Abort, err
		}
		res, err := c.Content.Write(ctx, c.FileType, src)
		src.Close()
		if err != nil {
			c.removeImported()
			return pipeline.Abort, err
		}

		// the prepare-time hash must match the bytes we just stored
		if res.SHA1 != e.SHA1 {
			c.Content.Remove(c.FileType, res.ArchiveName)
			c.removeImported()
			return pipeline.Abort, util.ErrCorrupt
		}

		c.Imported[e.SHA1] = ImportedFile{
			OriginalName: e.Name,
			ArchiveName:  res.ArchiveName,
			Size:         res.Size,
		}
	}
	return pipeline.Continue, nil
}

type stepUpdateDatabase struct{}

func (stepUpdateDatabase) Name() string { return "UpdateDatabase" }
func (stepUpdateDatabase) ShouldExecute(*Context) bool { return true }

func (stepUpdateDatabase) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	entries := c.selectedEntries()

	files := make([]catalog.NewFileSetFile, 0, len(entries))
	for _, e := range entries {
		f := catalog.NewFileSetFile{Name: e.Name, SHA1: e.SHA1, Size: e.Size}
		if imp, ok := c.Imported[e.SHA1]; ok {
			f.ArchiveName = imp.ArchiveName
		}
		files = append(files, f)
	}

	res, err := c.Catalog.InsertFileSetFull(catalog.InsertFileSetParams{
		Name:      c.Prepared.FileSetName,
		FileName:  c.Prepared.FileSetFileName,
		FileType:  c.FileType,
		Source:    c.Source,
		Files:     files,
		SystemIDs: c.SystemIDs,
		Release:   c.Release,
	})
	if err != nil {
		c.removeImported()
		return pipeline.Abort, err
	}
	c.Result = res

	// blobs written this run that lost to a pre-existing file info row
	for _, name := range res.DiscardedArchiveNames {
		if err := c.Content.Remove(c.FileType, name); err != nil {
			util.WarnLog("ingest: failed to remove discarded blob %s: %v", name, err)
		}
	}
	return pipeline.Continue, nil
}

type stepLinkItems struct{}

func (stepLinkItems) Name() string { return "LinkItems" }

func (stepLinkItems) ShouldExecute(c *Context) bool {
	return len(c.ItemIDs) > 0
}

func (stepLinkItems) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	if err := c.Catalog.LinkFileSetToItems(c.ItemIDs, c.Result.FileSetID); err != nil {
		return pipeline.Abort, err
	}
	return pipeline.Continue, nil
}

type stepLinkDat struct{}

func (stepLinkDat) Name() string { return "LinkDat" }

func (stepLinkDat) ShouldExecute(c *Context) bool {
	return c.DatFileID != 0
}

func (stepLinkDat) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	if err := c.Catalog.LinkDatFileToFileSet(c.DatFileID, c.Result.FileSetID); err != nil {
		return pipeline.Abort, err
	}
	return pipeline.Continue, nil
}
