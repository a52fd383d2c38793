// Package remote lists and fetches files of a repository hosted on a forge.
//
// By default it speaks Gitea's web endpoints:
//
//	GET {repo}/tree-list/branch/{ref}        ["LICENSE", "nitpick/all.toml", ...]
//	GET {repo}/raw/branch/{ref}/{path}       raw file content
//
// Both paths are configurable, and the listing may also be a git trees API
// response ({"tree": [{"path": ..., "type": "blob"}, ...]}), so the same
// client works against /api/v1/repos/{owner}/{name}/git/trees/{ref}?recursive=1.
package remote
