// Package downloader copies every file of a remote repository into a
// storage.Store and returns a verified content-hash map.
//
// This package ties the remote listing, the bounded work queue and the
// verifier together. The stages run strictly in order:
//
//  1. List the repository.
//  2. Materialize the target tree (create every parent directory).
//  3. Download every file with a fixed number of workers.
//  4. Read every requested file back and hash it.
//
// # Usage
//
//	repo, _ := remote.New("https://gitea.example.com/owner/repo", remote.Options{})
//	result, err := downloader.Download(ctx, repo, storage.NewDir("checkout"), downloader.Options{
//	    Workers: 8,
//	})
//
// # Failures
//
// Listing and directory failures abort before any file is downloaded.
// A failed download is not an error on its own: the file is simply not
// written, and step 4 reports it. When anything is missing Download returns
// a *verify.MissingFilesError listing every missing path at once.
// Nothing is retried.
package downloader
