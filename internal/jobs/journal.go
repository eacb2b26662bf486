package jobs

import "context"

// Journal persists job snapshots so that artifacts left behind by a crashed
// or restarted process can be found and removed on the next start.
type Journal interface {
	Save(ctx context.Context, j Job) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Job, error)
}

// NopJournal is used when no journal database is configured.
type NopJournal struct{}

func (NopJournal) Save(context.Context, Job) error { return nil }

func (NopJournal) Delete(context.Context, string) error { return nil }

func (NopJournal) List(context.Context) ([]Job, error) { return nil, nil }
