// Package catalog is a small client for a TMDB-compatible movie/TV catalog.
//
// It searches by title (and year for movies), returning the first result, and
// fetches poster or backdrop images normalised to JPEG. Search results are
// typed: ErrNoResults means the catalog has nothing for the query, while a
// *RemoteError (matching common.ErrRemote) signals a transient failure such
// as a timeout, a non-2xx status or a malformed body.
package catalog
