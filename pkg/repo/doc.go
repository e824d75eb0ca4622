// Package repo provides Repository, a generic persistence gateway for one
// entity type. Every operation returns a result.Result; failures wrap one of
// types.ErrValidation, types.ErrNotFound, types.ErrIO or
// types.ErrSerialization (plus the more specific repository errors) and are
// never raised as panics.
//
// A Repository neither retries nor caches. Writes are last write wins;
// nothing coordinates concurrent writers in separate processes.
package repo
