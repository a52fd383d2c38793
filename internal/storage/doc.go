// Package storage provides the target trees that repository files are
// written into and read back from.
//
// A [Store] is either a local directory ([Dir]) or a gocloud.dev/blob
// bucket ([Bucket]). [Open] picks one from a location string:
//
//	/tmp/checkout              local directory
//	file:///tmp/checkout       gocloud fileblob
//	mem://                     in-memory bucket (tests)
//	s3://bucket?region=...     S3 or S3-compatible storage
//	gs://bucket                Google Cloud Storage
//
// Paths are slash-separated, relative and canonical. Paths that are
// absolute, climb out of the root with "..", or are changed by path.Clean
// (such as "./a" or "b//c") are rejected with [ErrInvalidPath].
//
// [Store.Materialize] must run before concurrent writes: it creates every
// parent directory up front, so writers never race on directory creation.
package storage
