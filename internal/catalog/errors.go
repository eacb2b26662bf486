package catalog

import (
	"fmt"

	"github.com/dmitrijs2005/moviebox/internal/common"
)

// ErrNoResults is returned by Search when the catalog has no match.
var ErrNoResults = fmt.Errorf("catalog: no results: %w", common.ErrNotFound)

// RemoteError describes a failed round trip to the catalog.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	return []error{common.ErrRemote, e.Err}
}
