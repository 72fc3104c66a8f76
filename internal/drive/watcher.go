package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/tabular"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// FileSource lists and downloads files of a Drive folder.
type FileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

const defaultParallel = 4

// FolderReader pulls every CSV/XLSX file of a folder and stacks them into one table.
type FolderReader struct {
	files    FileSource
	parallel int
}

// NewFolderReader creates a reader that downloads up to parallel files at once.
func NewFolderReader(files FileSource, parallel int) *FolderReader {
	if parallel <= 0 {
		parallel = defaultParallel
	}
	return &FolderReader{files: files, parallel: parallel}
}

// ReadFolder downloads and decodes all supported files in folderID. A file that
// fails to download or decode is logged and skipped; only a failed listing is
// an error.
func (r *FolderReader) ReadFolder(ctx context.Context, folderID string) (*sales.Table, int, error) {
	files, err := r.files.ListFiles(ctx, folderID)
	if err != nil {
		return nil, 0, fmt.Errorf("list folder %s: %w", folderID, err)
	}

	var wanted []*File
	for _, f := range files {
		if tabular.Supported(f.Name) {
			wanted = append(wanted, f)
		}
	}

	tables := make([]*sales.Table, len(wanted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for i, f := range wanted {
		g.Go(func() error {
			var buf bytes.Buffer
			if err := r.files.DownloadFile(gctx, f.ID, &buf); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("file", f.Name).Msg("skipping file that failed to download")
				return nil
			}

			table, err := tabular.DecodeFile(f.Name, buf.Bytes())
			if err != nil {
				log.Warn().Err(err).Str("file", f.Name).Msg("skipping file that failed to decode")
				return nil
			}

			tables[i] = table
			log.Debug().Str("file", f.Name).Int("rows", table.Len()).Msg("loaded drive file")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	loaded := 0
	for _, t := range tables {
		if t != nil {
			loaded++
		}
	}

	return sales.ConcatTables(tables...), loaded, nil
}
