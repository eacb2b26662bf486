// Package archive packs a directory tree into a single Deflate-compressed
// zip file, reporting byte-based progress as it goes. Cached metadata
// directories are never included.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/moviebox/internal/common"
)

// DefaultChunkSize is the copy buffer size and the granularity of progress
// reports.
const DefaultChunkSize = 10 << 20

type Builder struct {
	fs        afero.Fs
	chunkSize int
}

func NewBuilder(fs afero.Fs, chunkSize int) *Builder {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Builder{fs: fs, chunkSize: chunkSize}
}

type entry struct {
	path    string
	name    string
	size    int64
	modTime time.Time
}

// Build writes dstDir/<base of src>.zip and returns its path. progress, when
// not nil, receives non-decreasing percentages computed from bytes copied;
// it is never called for an empty tree. On failure the partial archive is
// removed and the error matches common.ErrArchive.
func (b *Builder) Build(ctx context.Context, src, dstDir string, progress func(int)) (string, error) {
	src = filepath.Clean(src)

	entries, total, err := b.collect(src)
	if err != nil {
		return "", fmt.Errorf("%w: scan %s: %w", common.ErrArchive, src, err)
	}

	if err := b.fs.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", common.ErrArchive, dstDir, err)
	}

	out := filepath.Join(dstDir, filepath.Base(src)+".zip")
	if err := b.write(ctx, out, entries, total, progress); err != nil {
		_ = b.fs.Remove(out)
		return "", fmt.Errorf("%w: %w", common.ErrArchive, err)
	}

	return out, nil
}

// collect walks src and returns the regular files to archive with their
// combined size. Symlinks to regular files are archived under the link's
// name. Entries that cannot be read are skipped.
func (b *Builder) collect(src string) ([]entry, int64, error) {
	var (
		entries []entry
		total   int64
	)

	err := afero.Walk(b.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == src {
				return err
			}
			return nil
		}
		if info.IsDir() {
			if path != src && info.Name() == common.MetaDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := b.fs.Stat(path)
			if err != nil {
				return nil
			}
			info = target
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return nil
		}

		entries = append(entries, entry{
			path:    path,
			name:    filepath.ToSlash(rel),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		total += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (b *Builder) write(ctx context.Context, out string, entries []entry, total int64, progress func(int)) (err error) {
	f, err := b.fs.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", out, cerr)
		}
	}()

	zw := zip.NewWriter(f)

	var processed int64
	last := -1
	onChunk := func(n int) {
		processed += int64(n)
		if progress == nil || total <= 0 {
			return
		}
		p := int(processed * 100 / total)
		if p > 100 {
			p = 100
		}
		if p > last {
			last = p
			progress(p)
		}
	}

	buf := make([]byte, b.chunkSize)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.add(ctx, zw, e, buf, onChunk); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	if progress != nil && total > 0 && last < 100 {
		progress(100)
	}

	return nil
}

func (b *Builder) add(ctx context.Context, zw *zip.Writer, e entry, buf []byte, onChunk func(int)) error {
	src, err := b.fs.Open(e.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.path, err)
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     e.name,
		Method:   zip.Deflate,
		Modified: e.modTime,
	})
	if err != nil {
		return fmt.Errorf("add %s: %w", e.name, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return fmt.Errorf("write %s: %w", e.name, err)
			}
			onChunk(n)
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read %s: %w", e.path, rerr)
		}
	}
}
