// Package verify re-reads downloaded files and produces their content hashes.
//
// Verification is deliberately independent of the download step: it checks
// every path that was requested, not the ones a worker claims to have
// saved, so a silent download failure shows up here as a missing file.
//
// [Files] returns either the complete path-to-digest map or a single
// [MissingFilesError] listing every path that could not be read.
package verify
