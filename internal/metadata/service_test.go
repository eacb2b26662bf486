package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/moviebox/internal/catalog"
	"github.com/dmitrijs2005/moviebox/internal/common"
	"github.com/dmitrijs2005/moviebox/internal/logging"
)

type fakeCatalog struct {
	mu         sync.Mutex
	configured bool
	match      *catalog.Match
	searchErr  error
	imageErr   error
	delay      time.Duration
	queries    []catalog.Query
	searches   atomic.Int32
	images     atomic.Int32
}

func (f *fakeCatalog) Configured() bool { return f.configured }

func (f *fakeCatalog) Search(_ context.Context, q catalog.Query) (*catalog.Match, error) {
	f.searches.Add(1)
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	m := *f.match
	return &m, nil
}

func (f *fakeCatalog) FetchImage(_ context.Context, ref string) ([]byte, error) {
	f.images.Add(1)
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return []byte("jpeg:" + ref), nil
}

func inception() *catalog.Match {
	return &catalog.Match{
		Title:        "Inception",
		Year:         "2010",
		Overview:     "A thief who steals corporate secrets.",
		Rating:       8.4,
		PosterPath:   "/p.jpg",
		BackdropPath: "/b.jpg",
	}
}

const root = "/media"

func newService(t *testing.T, c *fakeCatalog, policy DegradedPolicy) (*Service, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "Movies"), 0o755))
	return NewService(fs, root, c, policy, logging.Discard()), fs
}

func readRecordFile(t *testing.T, fs afero.Fs, path string) map[string]any {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestService_Get_MissFetchesAndCaches(t *testing.T) {
	c := &fakeCatalog{configured: true, match: inception()}
	svc, fs := newService(t, c, KeepDegraded)
	folder := filepath.Join(root, "Movies")
	name := "Inception.2010.1080p.BluRay.x264.mkv"

	rec := svc.Get(context.Background(), name, folder, false)

	require.Len(t, c.queries, 1)
	assert.Equal(t, catalog.Query{Title: "Inception", Year: "2010", IsTV: false}, c.queries[0])

	assert.Equal(t, "Inception", rec.Title)
	assert.Equal(t, "2010", rec.Year)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 8.4, *rec.Rating, 0.001)
	require.NotNil(t, rec.Poster)
	assert.Equal(t, "/metadata_img/Movies/.meta/"+name+".jpg", *rec.Poster)
	require.NotNil(t, rec.Backdrop)
	assert.Equal(t, "/metadata_img/Movies/.meta/Inception.2010.1080p.BluRay.x264.mkv_bg.jpg", *rec.Backdrop)
	assert.False(t, rec.Degraded)

	img, err := afero.ReadFile(fs, filepath.Join(folder, ".meta", name+".jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg:/p.jpg", string(img))

	onDisk := readRecordFile(t, fs, filepath.Join(folder, ".meta", name+".json"))
	assert.EqualValues(t, SchemaVersion, onDisk["schema_version"])
	assert.Contains(t, onDisk, "backdrop")

	again := svc.Get(context.Background(), name, folder, false)
	assert.Equal(t, int32(1), c.searches.Load(), "second lookup must be served from cache")
	assert.Equal(t, rec, again)
}

func TestService_Get_DirectoryForcesTV(t *testing.T) {
	c := &fakeCatalog{configured: true, match: &catalog.Match{Title: "Dark"}}
	svc, _ := newService(t, c, KeepDegraded)

	rec := svc.Get(context.Background(), "Dark", filepath.Join(root, "Movies"), true)

	require.Len(t, c.queries, 1)
	assert.True(t, c.queries[0].IsTV)
	assert.True(t, rec.IsTV)
	assert.Nil(t, rec.Poster)
	assert.Nil(t, rec.Backdrop)
}

func TestService_Get_InvalidCacheIsRefetched(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing backdrop key", body: `{"schema_version":2,"title":"Old","poster":null}`},
		{name: "older schema", body: `{"schema_version":1,"title":"Old","backdrop":null}`},
		{name: "no schema", body: `{"title":"Old","backdrop":null}`},
		{name: "corrupt", body: `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCatalog{configured: true, match: inception()}
			svc, fs := newService(t, c, KeepDegraded)
			folder := filepath.Join(root, "Movies")
			require.NoError(t, fs.MkdirAll(filepath.Join(folder, ".meta"), 0o755))
			require.NoError(t, afero.WriteFile(fs, filepath.Join(folder, ".meta", "Inception.mkv.json"), []byte(tt.body), 0o644))

			rec := svc.Get(context.Background(), "Inception.mkv", folder, false)

			assert.Equal(t, int32(1), c.searches.Load())
			assert.Equal(t, "Inception", rec.Title)
		})
	}
}

func TestService_Get_ValidCacheIsReturnedVerbatim(t *testing.T) {
	c := &fakeCatalog{configured: true, match: inception()}
	svc, fs := newService(t, c, KeepDegraded)
	folder := filepath.Join(root, "Movies")
	require.NoError(t, fs.MkdirAll(filepath.Join(folder, ".meta"), 0o755))
	body := `{"schema_version":2,"key":"x.mkv","title":"Cached","rating":null,"poster":null,"backdrop":null,"is_tv":false,"degraded":false}`
	require.NoError(t, afero.WriteFile(fs, filepath.Join(folder, ".meta", "x.mkv.json"), []byte(body), 0o644))

	rec := svc.Get(context.Background(), "x.mkv", folder, false)

	assert.Equal(t, int32(0), c.searches.Load())
	assert.Equal(t, "Cached", rec.Title)
}

func TestService_Get_SearchFailureDegrades(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "no results", err: catalog.ErrNoResults},
		{name: "remote", err: &catalog.RemoteError{Op: "search", Err: errors.New("timeout")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCatalog{configured: true, searchErr: tt.err}
			svc, fs := newService(t, c, KeepDegraded)
			folder := filepath.Join(root, "Movies")

			rec := svc.Get(context.Background(), "Unknown.Film.1999.mkv", folder, false)

			assert.True(t, rec.Degraded)
			assert.Equal(t, "Unknown Film", rec.Title)
			assert.Equal(t, "1999", rec.Year)
			assert.Nil(t, rec.Poster)
			assert.Nil(t, rec.Rating)

			exists, err := afero.Exists(fs, filepath.Join(folder, ".meta", "Unknown.Film.1999.mkv.json"))
			require.NoError(t, err)
			assert.True(t, exists, "degraded records are cached")
		})
	}
}

func TestService_Get_DegradedPolicy(t *testing.T) {
	folder := filepath.Join(root, "Movies")

	t.Run("keep serves degraded record from cache", func(t *testing.T) {
		c := &fakeCatalog{configured: true, searchErr: catalog.ErrNoResults}
		svc, _ := newService(t, c, KeepDegraded)

		svc.Get(context.Background(), "a.mkv", folder, false)
		c.searchErr = nil
		c.match = inception()
		rec := svc.Get(context.Background(), "a.mkv", folder, false)

		assert.Equal(t, int32(1), c.searches.Load())
		assert.True(t, rec.Degraded)
	})

	t.Run("refetch retries degraded record", func(t *testing.T) {
		c := &fakeCatalog{configured: true, searchErr: catalog.ErrNoResults}
		svc, _ := newService(t, c, RefetchDegraded)

		svc.Get(context.Background(), "a.mkv", folder, false)
		c.searchErr = nil
		c.match = inception()
		rec := svc.Get(context.Background(), "a.mkv", folder, false)

		assert.Equal(t, int32(2), c.searches.Load())
		assert.False(t, rec.Degraded)
		assert.Equal(t, "Inception", rec.Title)
	})
}

func TestService_Get_UnconfiguredIsNotPersisted(t *testing.T) {
	c := &fakeCatalog{configured: false}
	svc, fs := newService(t, c, KeepDegraded)
	folder := filepath.Join(root, "Movies")

	rec := svc.Get(context.Background(), "Heat.1995.mkv", folder, false)

	assert.Equal(t, int32(0), c.searches.Load())
	assert.True(t, rec.Degraded)
	assert.Equal(t, "Heat", rec.Title)

	exists, err := afero.Exists(fs, filepath.Join(folder, ".meta", "Heat.1995.mkv.json"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_Get_ImageFailureYieldsNullPaths(t *testing.T) {
	c := &fakeCatalog{configured: true, match: inception(), imageErr: fmt.Errorf("boom: %w", common.ErrRemote)}
	svc, _ := newService(t, c, KeepDegraded)

	rec := svc.Get(context.Background(), "Inception.mkv", filepath.Join(root, "Movies"), false)

	assert.Equal(t, "Inception", rec.Title)
	assert.False(t, rec.Degraded)
	assert.Nil(t, rec.Poster)
	assert.Nil(t, rec.Backdrop)
}

func TestService_Get_RejectsNamesWithSeparators(t *testing.T) {
	c := &fakeCatalog{configured: true, match: inception()}
	svc, _ := newService(t, c, KeepDegraded)

	rec := svc.Get(context.Background(), "../escape.mkv", filepath.Join(root, "Movies"), false)

	assert.True(t, rec.Degraded)
	assert.Equal(t, int32(0), c.searches.Load())
}

func TestService_Get_RejectsBareSeparator(t *testing.T) {
	c := &fakeCatalog{configured: true, match: inception()}
	svc, fs := newService(t, c, KeepDegraded)
	folder := filepath.Join(root, "Movies")

	rec := svc.Get(context.Background(), "/", folder, false)

	assert.True(t, rec.Degraded)
	assert.Equal(t, int32(0), c.searches.Load())
	exists, err := afero.DirExists(fs, filepath.Join(folder, ".meta"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_Get_DirectoryNameKeepsDottedWords(t *testing.T) {
	c := &fakeCatalog{configured: true, match: &catalog.Match{Title: "Doctor Who"}}
	svc, _ := newService(t, c, KeepDegraded)

	svc.Get(context.Background(), "Doctor.Who", filepath.Join(root, "Movies"), true)

	require.Len(t, c.queries, 1)
	assert.Equal(t, catalog.Query{Title: "Doctor Who", IsTV: true}, c.queries[0])
}

func TestService_Get_ConcurrentFirstLookupsCollapse(t *testing.T) {
	c := &fakeCatalog{configured: true, match: inception(), delay: 50 * time.Millisecond}
	svc, _ := newService(t, c, KeepDegraded)
	folder := filepath.Join(root, "Movies")

	var wg sync.WaitGroup
	results := make([]Record, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Get(context.Background(), "Inception.2010.mkv", folder, false)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), c.searches.Load())
	for _, r := range results {
		assert.Equal(t, "Inception", r.Title)
	}
}

func TestServablePath_EscapesSegments(t *testing.T) {
	got := ServablePath(filepath.Join("My Movies", ".meta", "Amélie #1.mkv.jpg"))
	assert.Equal(t, "/metadata_img/My%20Movies/.meta/Am%C3%A9lie%20%231.mkv.jpg", got)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, RefetchDegraded, ParsePolicy("refetch"))
	assert.Equal(t, KeepDegraded, ParsePolicy("keep"))
	assert.Equal(t, KeepDegraded, ParsePolicy(""))
}
