// Package metadata resolves display metadata for media files and folders,
// caching each record (and its artwork) in a hidden .meta directory next to
// the media so that the remote catalog is asked at most once per item.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/moviebox/internal/catalog"
	"github.com/dmitrijs2005/moviebox/internal/common"
	"github.com/dmitrijs2005/moviebox/internal/filename"
	"github.com/dmitrijs2005/moviebox/internal/logging"
)

// Catalog is the remote lookup used on cache misses.
type Catalog interface {
	Configured() bool
	Search(ctx context.Context, q catalog.Query) (*catalog.Match, error)
	FetchImage(ctx context.Context, ref string) ([]byte, error)
}

type Service struct {
	fs      afero.Fs
	root    string
	catalog Catalog
	policy  DegradedPolicy
	logger  logging.Logger
	group   singleflight.Group
}

// NewService returns a cache rooted at root; image paths in records are
// relative to it.
func NewService(fs afero.Fs, root string, c Catalog, policy DegradedPolicy, logger logging.Logger) *Service {
	return &Service{
		fs:      fs,
		root:    filepath.Clean(root),
		catalog: c,
		policy:  policy,
		logger:  logger.With("module", "metadata"),
	}
}

// Get returns the record for name inside folder. It never fails: any problem
// downgrades the result to a record built from the file name alone.
func (s *Service) Get(ctx context.Context, name, folder string, isDir bool) Record {
	if name == "" || strings.ContainsAny(name, "/"+string(filepath.Separator)) || name == "." || name == ".." {
		parsed := parse(name, isDir)
		return degradedRecord(name, parsed, isDir || parsed.IsTV)
	}

	key := filepath.Join(folder, name)
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.resolve(ctx, name, folder, isDir), nil
	})
	return v.(Record)
}

func parse(name string, isDir bool) filename.Parsed {
	if isDir {
		return filename.ParseDir(name)
	}
	return filename.Parse(name)
}

func (s *Service) resolve(ctx context.Context, name, folder string, isDir bool) Record {
	metaDir := filepath.Join(folder, common.MetaDirName)
	if err := s.fs.MkdirAll(metaDir, 0o755); err != nil {
		s.logger.Warn(ctx, "cannot create metadata dir", "dir", metaDir, "error", err)
	}

	cachePath := filepath.Join(metaDir, name+".json")
	if rec, ok := s.readCached(cachePath); ok {
		return rec
	}

	parsed := parse(name, isDir)
	isTV := isDir || parsed.IsTV

	if !s.catalog.Configured() {
		return degradedRecord(name, parsed, isTV)
	}

	rec := s.lookup(ctx, name, metaDir, parsed, isTV)

	data, err := json.Marshal(rec)
	if err == nil {
		err = writeFileAtomic(s.fs, cachePath, data)
	}
	if err != nil {
		s.logger.Warn(ctx, "cannot persist metadata", "path", cachePath, "error", err)
	}

	return rec
}

func (s *Service) lookup(ctx context.Context, name, metaDir string, parsed filename.Parsed, isTV bool) Record {
	m, err := s.catalog.Search(ctx, catalog.Query{Title: parsed.Title, Year: parsed.Year, IsTV: isTV})
	if err != nil {
		if errors.Is(err, common.ErrRemote) {
			s.logger.Warn(ctx, "catalog search failed", "title", parsed.Title, "error", err)
		} else {
			s.logger.Info(ctx, "no catalog match", "title", parsed.Title, "year", parsed.Year)
		}
		return degradedRecord(name, parsed, isTV)
	}

	rating := m.Rating
	rec := Record{
		SchemaVersion: SchemaVersion,
		Key:           name,
		Title:         m.Title,
		Year:          m.Year,
		Overview:      m.Overview,
		Rating:        &rating,
		IsTV:          isTV,
	}
	if rec.Title == "" {
		rec.Title = parsed.Title
	}
	if rec.Year == "" {
		rec.Year = parsed.Year
	}

	rec.Poster = s.storeImage(ctx, metaDir, name+".jpg", m.PosterPath)
	rec.Backdrop = s.storeImage(ctx, metaDir, name+"_bg.jpg", m.BackdropPath)

	return rec
}

// storeImage downloads ref into metaDir/file and returns its servable path.
func (s *Service) storeImage(ctx context.Context, metaDir, file, ref string) *string {
	if ref == "" {
		return nil
	}

	data, err := s.catalog.FetchImage(ctx, ref)
	if err != nil {
		s.logger.Warn(ctx, "image download failed", "ref", ref, "error", err)
		return nil
	}

	dst := filepath.Join(metaDir, file)
	if err := writeFileAtomic(s.fs, dst, data); err != nil {
		s.logger.Warn(ctx, "cannot save image", "path", dst, "error", err)
		return nil
	}

	rel, err := filepath.Rel(s.root, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		s.logger.Warn(ctx, "image outside shared root", "path", dst)
		return nil
	}

	p := ServablePath(rel)
	return &p
}

func (s *Service) readCached(path string) (Record, bool) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return Record{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, false
	}
	if _, ok := fields["backdrop"]; !ok {
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false
	}
	if rec.SchemaVersion != SchemaVersion {
		return Record{}, false
	}
	if rec.Degraded && s.policy == RefetchDegraded {
		return Record{}, false
	}

	return rec, true
}

func degradedRecord(name string, parsed filename.Parsed, isTV bool) Record {
	return Record{
		SchemaVersion: SchemaVersion,
		Key:           name,
		Title:         parsed.Title,
		Year:          parsed.Year,
		IsTV:          isTV,
		Degraded:      true,
	}
}

// ServablePath turns a path relative to the shared root into the URL path
// under which the image handler serves it.
func ServablePath(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return common.ImageRoutePrefix + strings.Join(parts, "/")
}
