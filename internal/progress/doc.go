// Package progress provides progress reporting for repository downloads.
//
// This package outputs human-readable progress information, including
// completed and failed file counts and transfer speed.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Workers: 8,
//	    Source:  repoURL,
//	})
//
//	reporter.SetTotal(len(paths))
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as files complete
//	reporter.FileStarted()
//	reporter.FileCompleted(size)
//
// # Output Format
//
//	[reposlurp] Downloading: https://gitea.example.com/owner/repo
//	[reposlurp] Files: 120 | Workers: 8
//	[reposlurp] Progress: 45.0% | 54/120 files | 1.20 MB | Speed: 310.00 KB/s | 8 in-progress | 58 pending | 0 failed
package progress
