// Package filestore implements the file-backed stores: Dir, one file per
// record, and JSONL, one line-delimited file per collection. Both replace
// files atomically through a synced temp file and a rename.
package filestore
