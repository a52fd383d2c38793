// Package manifest stores and checks the content hashes of a downloaded
// repository.
//
// A [Manifest] is written after a successful download and can later be used
// to [Validate] that a tree still holds exactly the recorded content.
//
// # Manifest Format
//
//	{
//	  "version": 1,
//	  "source": "https://gitea.example.com/owner/repo",
//	  "ref": "master",
//	  "file_count": 2,
//	  "total_size": 1536,
//	  "files": {
//	    "LICENSE": "8d6f...",
//	    "nitpick/all.toml": "91ab..."
//	  },
//	  "completed_at": "2025-01-15T10:30:00Z"
//	}
//
// See example_test.go for usage examples.
package manifest
