// Package deletion removes a file set: local blobs whose last
// reference it is, the catalog rows, and a deletion mark for every
// remote copy.
package deletion

import (
	"context"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/contentstore"
	"github.com/zorrokid/emulation-file-manager/internal/pipeline"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// MemberOutcome is the per-member result vector. A single member
// failure does not abort the pipeline.
type MemberOutcome struct {
	FileName          string
	SHA1              string
	FileDeleted       bool
	DBDeleted         bool
	CloudDeleteMarked bool
	Err               error
}

// Context is the deletion pipeline state
type Context struct {
	FileSetID int64

	Catalog *catalog.Store
	Content *contentstore.Store

	// intermediate state
	members   []catalog.FileSetFile
	deletable map[int64]bool // file info id -> sole link is this set

	// output
	Outcomes []MemberOutcome
}

// Run executes the deletion pipeline and returns the per-member
// outcome vector
func Run(ctx context.Context, c *Context) ([]MemberOutcome, error) {
	p := pipeline.New[Context]("deletion",
		stepValidateNotInUse{},
		stepFetchFileInfos{},
		stepDecideDeletable{},
		stepDeleteLocalBlobs{},
		stepDeleteCatalog{},
	)
	if err := p.Run(ctx, c); err != nil {
		return c.Outcomes, err
	}
	return c.Outcomes, nil
}

type stepValidateNotInUse struct{}

func (stepValidateNotInUse) Name() string { return "ValidateNotInUse" }
func (stepValidateNotInUse) ShouldExecute(*Context) bool { return true }

func (stepValidateNotInUse) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	inUse, err := c.Catalog.IsFileSetInUse(c.FileSetID)
	if err != nil {
		return pipeline.Abort, err
	}
	if inUse {
		return pipeline.Abort, util.ErrInUse
	}
	return pipeline.Continue, nil
}

type stepFetchFileInfos struct{}

func (stepFetchFileInfos) Name() string { return "FetchFileInfos" }
func (stepFetchFileInfos) ShouldExecute(*Context) bool { return true }

func (stepFetchFileInfos) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	members, err := c.Catalog.GetFileSetFiles(c.FileSetID)
	if err != nil {
		return pipeline.Abort, err
	}
	c.members = members
	for _, m := range members {
		c.Outcomes = append(c.Outcomes, MemberOutcome{FileName: m.FileName, SHA1: m.SHA1})
	}
	return pipeline.Continue, nil
}

type stepDecideDeletable struct{}

func (stepDecideDeletable) Name() string { return "DecideDeletable" }
func (stepDecideDeletable) ShouldExecute(*Context) bool { return true }

func (stepDecideDeletable) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	c.deletable = make(map[int64]bool, len(c.members))
	for _, m := range c.members {
		orphan, err := c.Catalog.IsOrphanAfterFileSetRemoval(m.ID, c.FileSetID)
		if err != nil {
			return pipeline.Abort, err
		}
		c.deletable[m.ID] = orphan
	}
	return pipeline.Continue, nil
}

type stepDeleteLocalBlobs struct{}

func (stepDeleteLocalBlobs) Name() string { return "DeleteLocalBlobs" }
func (stepDeleteLocalBlobs) ShouldExecute(*Context) bool { return true }

func (stepDeleteLocalBlobs) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	for i, m := range c.members {
		outcome := &c.Outcomes[i]
		if !c.deletable[m.ID] {
			// shared with another set; nothing to remove
			continue
		}

		present, err := c.Content.Exists(m.FileType, m.ArchiveFileName)
		if err == nil && present {
			err = c.Content.Remove(m.FileType, m.ArchiveFileName)
		}
		if err != nil {
			outcome.Err = err
			util.WarnLog("deletion: failed to remove blob %s: %v", m.ArchiveFileName, err)
			continue
		}
		outcome.FileDeleted = true
	}
	return pipeline.Continue, nil
}

type stepDeleteCatalog struct{}

func (stepDeleteCatalog) Name() string { return "DeleteCatalog" }
func (stepDeleteCatalog) ShouldExecute(*Context) bool { return true }

func (stepDeleteCatalog) Execute(ctx context.Context, c *Context) (pipeline.Action, error) {
	// collect the latest sync state before the file info rows go away
	uploaded := make(map[int64]string, len(c.members))
	for _, m := range c.members {
		if !c.deletable[m.ID] {
			continue
		}
		latest, err := c.Catalog.GetLatestSyncLog(m.ID)
		if err != nil {
			return pipeline.Abort, err
		}
		if latest != nil && latest.Status == catalog.SyncUploadCompleted {
			uploaded[m.ID] = latest.CloudKey
		}
	}

	if _, err := c.Catalog.DeleteFileSet(c.FileSetID); err != nil {
		return pipeline.Abort, err
	}
	for i := range c.Outcomes {
		c.Outcomes[i].DBDeleted = true
	}

	// the sync log outlives the file info rows; mark remote copies
	for i, m := range c.members {
		key, ok := uploaded[m.ID]
		if !ok {
			continue
		}
		outcome := &c.Outcomes[i]
		if _, err := c.Catalog.InsertSyncLog(m.ID, catalog.SyncDeletionPending, "", key); err != nil {
			outcome.Err = err
			util.WarnLog("deletion: failed to mark %s for cloud deletion: %v", key, err)
			continue
		}
		outcome.CloudDeleteMarked = true
	}
	return pipeline.Continue, nil
}
