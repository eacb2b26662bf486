// Package jobs runs folder exports in the background.
//
// A Manager owns an in-memory table of jobs. Start registers a job and hands
// it to a bounded worker pool; callers then poll Status until the job is
// ready and fetch the archive once with Retrieve. Each job moves
// processing -> ready | error, and terminal jobs leave the table only when
// retrieved or swept after their TTL.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/moviebox/internal/common"
	"github.com/dmitrijs2005/moviebox/internal/logging"
	"github.com/dmitrijs2005/moviebox/internal/storage"
)

const (
	DefaultWorkers   = 2
	DefaultQueueSize = 64

	journalTimeout = 5 * time.Second
)

// Builder produces an archive of src inside dstDir.
type Builder interface {
	Build(ctx context.Context, src, dstDir string, progress func(int)) (string, error)
}

type Options struct {
	// TempDir holds one working subdirectory per job.
	TempDir   string
	Workers   int
	QueueSize int
	// TTL is how long a finished job is kept; zero keeps it until retrieved.
	TTL time.Duration
}

type record struct {
	Job
	claimed bool
}

type Manager struct {
	mu   sync.Mutex
	jobs map[string]*record

	fs      afero.Fs
	builder Builder
	store   storage.Store
	journal Journal
	logger  logging.Logger
	opts    Options
	pool    *workerPool

	now   func() time.Time
	newID func() string
}

func NewManager(fs afero.Fs, b Builder, s storage.Store, j Journal, logger logging.Logger, opts Options) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if j == nil {
		j = NopJournal{}
	}

	m := &Manager{
		jobs:    make(map[string]*record),
		fs:      fs,
		builder: b,
		store:   s,
		journal: j,
		logger:  logger.With("module", "jobs"),
		opts:    opts,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	m.pool = newWorkerPool(opts.Workers, opts.QueueSize, m.run)

	return m
}

// Start registers an export of sourcePath and queues it. It returns
// common.ErrNotFound for a missing path, common.ErrInvalidPath when the path
// is not a directory and common.ErrBusy when the queue is full.
func (m *Manager) Start(ctx context.Context, sourcePath string) (string, error) {
	sourcePath = filepath.Clean(sourcePath)

	info, err := m.fs.Stat(sourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", common.ErrNotFound, sourcePath)
		}
		return "", fmt.Errorf("stat %s: %w", sourcePath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", common.ErrInvalidPath, sourcePath)
	}

	now := m.now()
	job := Job{
		ID:         m.newID(),
		Status:     StatusProcessing,
		SourcePath: sourcePath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = &record{Job: job}
	m.mu.Unlock()

	m.saveJournal(ctx, job)

	if !m.pool.submit(job.ID) {
		m.mu.Lock()
		delete(m.jobs, job.ID)
		m.mu.Unlock()
		m.deleteJournal(ctx, job.ID)
		return "", common.ErrBusy
	}

	m.logger.Info(ctx, "export queued", "job_id", job.ID, "path", sourcePath)
	return job.ID, nil
}

// Status returns a snapshot of the job.
func (m *Manager) Status(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.jobs[id]
	if !ok || r.claimed {
		return Job{}, fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	return r.Job, nil
}

// Retrieve hands out the archive of a ready job exactly once. The job leaves
// the table as soon as the archive is opened; closing the Artifact removes
// the archive and the journal row.
func (m *Manager) Retrieve(ctx context.Context, id string) (*Artifact, error) {
	m.mu.Lock()
	r, ok := m.jobs[id]
	switch {
	case !ok || r.claimed:
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	case r.Status != StatusReady:
		status := r.Status
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: job %s is %s", common.ErrNotReady, id, status)
	}
	r.claimed = true
	job := r.Job
	m.mu.Unlock()

	body, size, err := m.store.Open(ctx, job.OutputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, common.ErrNotFound) {
			m.mu.Lock()
			delete(m.jobs, id)
			m.mu.Unlock()
			m.discard(ctx, job)
			return nil, fmt.Errorf("%w: archive of job %s is gone", common.ErrNotFound, id)
		}

		m.mu.Lock()
		r.claimed = false
		m.mu.Unlock()
		return nil, fmt.Errorf("open archive of job %s: %w", id, err)
	}

	m.mu.Lock()
	delete(m.jobs, id)
	m.mu.Unlock()

	m.logger.Info(ctx, "export retrieved", "job_id", id, "size", size)

	return &Artifact{
		Name: filepath.Base(job.SourcePath) + ".zip",
		Size: size,
		body: body,
		release: func() {
			ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
			defer cancel()
			m.discard(ctx, job)
		},
	}, nil
}

// Sweep removes finished jobs older than the TTL together with their
// archives and returns how many were removed.
func (m *Manager) Sweep(ctx context.Context, now time.Time) int {
	if m.opts.TTL <= 0 {
		return 0
	}

	var expired []Job
	m.mu.Lock()
	for id, r := range m.jobs {
		if r.Status.Terminal() && !r.claimed && now.Sub(r.FinishedAt) > m.opts.TTL {
			expired = append(expired, r.Job)
			delete(m.jobs, id)
		}
	}
	m.mu.Unlock()

	for _, j := range expired {
		m.discard(ctx, j)
		m.logger.Info(ctx, "export expired", "job_id", j.ID, "status", j.Status)
	}

	return len(expired)
}

// Reconcile removes archives and journal rows left by a previous process.
// It must run before the first Start.
func (m *Manager) Reconcile(ctx context.Context) (int, error) {
	stale, err := m.journal.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list journal: %w", err)
	}

	for _, j := range stale {
		m.discard(ctx, j)
	}

	return len(stale), nil
}

// Shutdown stops the workers. Running builds are cancelled and queued jobs
// are dropped.
func (m *Manager) Shutdown() {
	m.pool.shutdown()
}

func (m *Manager) jobDir(id string) string {
	return filepath.Join(m.opts.TempDir, id)
}

func (m *Manager) run(ctx context.Context, id string) {
	m.mu.Lock()
	r, ok := m.jobs[id]
	var src string
	if ok {
		src = r.SourcePath
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	logger := m.logger.With("job_id", id)
	dir := m.jobDir(id)

	out, err := m.builder.Build(ctx, src, dir, func(p int) { m.setProgress(id, p) })
	if err == nil {
		var loc string
		loc, err = m.store.Publish(ctx, out)
		if err == nil {
			if loc != out {
				_ = m.fs.RemoveAll(dir)
			}
			m.finish(id, StatusReady, loc, nil)
			logger.Info(ctx, "export ready", "location", loc)
			return
		}
		err = fmt.Errorf("%w: publish: %w", common.ErrArchive, err)
	}

	_ = m.fs.RemoveAll(dir)
	m.finish(id, StatusError, "", err)
	logger.Error(ctx, "export failed", "path", src, "error", err)
}

// setProgress ignores updates that would move progress backwards.
func (m *Manager) setProgress(id string, p int) {
	if p > 100 {
		p = 100
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.jobs[id]
	if !ok || r.Status != StatusProcessing || p <= r.Progress {
		return
	}
	r.Progress = p
	r.UpdatedAt = m.now()
}

func (m *Manager) finish(id string, status Status, location string, cause error) {
	now := m.now()

	m.mu.Lock()
	r, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	r.Status = status
	r.OutputPath = location
	r.UpdatedAt = now
	r.FinishedAt = now
	if status == StatusReady {
		r.Progress = 100
	}
	if cause != nil {
		r.Err = cause.Error()
	}
	job := r.Job
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	m.saveJournal(ctx, job)
}

// discard deletes everything a job left on disk or in storage.
func (m *Manager) discard(ctx context.Context, j Job) {
	if j.OutputPath != "" {
		if err := m.store.Remove(ctx, j.OutputPath); err != nil {
			m.logger.Warn(ctx, "cannot remove archive", "job_id", j.ID, "location", j.OutputPath, "error", err)
		}
	}
	if err := m.fs.RemoveAll(m.jobDir(j.ID)); err != nil {
		m.logger.Warn(ctx, "cannot remove job dir", "job_id", j.ID, "error", err)
	}
	m.deleteJournal(ctx, j.ID)
}

func (m *Manager) saveJournal(ctx context.Context, j Job) {
	if err := m.journal.Save(ctx, j); err != nil {
		m.logger.Warn(ctx, "journal save failed", "job_id", j.ID, "error", err)
	}
}

func (m *Manager) deleteJournal(ctx context.Context, id string) {
	if err := m.journal.Delete(ctx, id); err != nil {
		m.logger.Warn(ctx, "journal delete failed", "job_id", id, "error", err)
	}
}

// Artifact streams a retrieved archive. Closing it deletes the archive and
// the journal row; only the first Close does so.
type Artifact struct {
	Name string
	Size int64

	body    io.ReadCloser
	once    sync.Once
	release func()
}

func (a *Artifact) Read(p []byte) (int, error) {
	return a.body.Read(p)
}

func (a *Artifact) Close() error {
	err := a.body.Close()
	a.once.Do(a.release)
	return err
}
