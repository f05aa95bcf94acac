// Package prepare inspects an input file before ingestion: it derives
// file set naming, enumerates and hashes the content (ZIP members or
// the single file) and classifies each entry against the catalog.
package prepare

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/zorrokid/emulation-file-manager/internal/archive"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/pipeline"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// Classification tells whether an entry's content is already stored
type Classification int

const (
	// New content has no file info row for (sha1, file type)
	New Classification = iota
	// Existing content is already stored under an archive name
	Existing
)

// Entry is one classified member of the proposed file set
type Entry struct {
	Name           string
	SHA1           string
	Size           int64
	Classification Classification
	// ArchiveName is set for Existing entries
	ArchiveName string
}

// Context is the prepare pipeline state
type Context struct {
	InputPath string
	FileType  filetype.FileType

	FS      fsys.FileSystem
	Reader  *archive.Reader
	Catalog *catalog.Store

	// outputs
	FileSetName     string
	FileSetFileName string
	IsZipArchive    bool
	Entries         []Entry
}

// Result is what the caller gets to propose a file set from
type Result struct {
	FileSetName     string
	FileSetFileName string
	IsZipArchive    bool
	Entries         []Entry
}

// Run executes the prepare pipeline over the input file
func Run(ctx context.Context, c *Context) (*Result, error) {
	p := pipeline.New[Context]("prepare",
		stepCollectMetadata{},
		stepCollectContent{},
		stepCheckExisting{},
	)
	if err := p.Run(ctx, c); err != nil {
		return nil, err
	}
	return &Result{
		FileSetName:     c.FileSetName,
		FileSetFileName: c.FileSetFileName,
		IsZipArchive:    c.IsZipArchive,
		Entries:         c.Entries,
	}, nil
}

type stepCollectMetadata struct{}

func (stepCollectMetadata) Name() string { return "CollectFileMetadata" }
func (stepCollectMetadata) ShouldExecute(*Context) bool { return true }

func (stepCollectMetadata) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	exists, err := c.FS.Exists(c.InputPath)
	if err != nil {
		return pipeline.Abort, err
	}
	if !exists {
		return pipeline.Abort, util.ErrNotFound
	}

	base := filepath.Base(c.InputPath)
	c.FileSetFileName = base
	c.FileSetName = strings.TrimSuffix(base, filepath.Ext(base))

	c.IsZipArchive, err = c.FS.IsZipArchive(c.InputPath)
	if err != nil {
		return pipeline.Abort, err
	}
	return pipeline.Continue, nil
}

type stepCollectContent struct{}

func (stepCollectContent) Name() string { return "CollectFileContent" }
func (stepCollectContent) ShouldExecute(*Context) bool { return true }

func (stepCollectContent) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	entries, err := c.Reader.Entries(c.InputPath)
	if err != nil {
		return pipeline.Abort, err
	}
	for _, e := range entries {
		c.Entries = append(c.Entries, Entry{
			Name:           e.Name,
			SHA1:           e.SHA1,
			Size:           e.Size,
			Classification: New,
		})
	}
	return pipeline.Continue, nil
}

type stepCheckExisting struct{}

func (stepCheckExisting) Name() string { return "CheckExistingFiles" }
func (stepCheckExisting) ShouldExecute(*Context) bool { return true }

func (stepCheckExisting) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	sha1s := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		sha1s[i] = e.SHA1
	}

	existing, err := c.Catalog.FindExistingFileInfos(sha1s, c.FileType)
	if err != nil {
		return pipeline.Abort, err
	}

	byHash := make(map[string]catalog.FileInfo, len(existing))
	for _, fi := range existing {
		byHash[fi.SHA1] = fi
	}
	for i := range c.Entries {
		if fi, ok := byHash[c.Entries[i].SHA1]; ok {
			c.Entries[i].Classification = Existing
			c.Entries[i].ArchiveName = fi.ArchiveFileName
		}
	}
	return pipeline.Continue, nil
}
