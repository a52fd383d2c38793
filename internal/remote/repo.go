package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	slurphttp "github.com/ligustah/reposlurp/internal/http"
)

// Default endpoint layout of a Gitea forge. {ref} is replaced by the branch.
const (
	DefaultListPath = "/tree-list/branch/{ref}"
	DefaultRawPath  = "/raw/branch/{ref}/"
	DefaultRef      = "master"
)

// Options configures a Repo.
type Options struct {
	// Ref is the branch to list and download. Default: master.
	Ref string

	// ListPath is appended to the repository URL to get the file listing.
	// Default: DefaultListPath
	ListPath string

	// RawPath is appended to the repository URL, followed by the file path,
	// to get a file's raw content. Default: DefaultRawPath
	RawPath string

	// HTTPOptions configures the HTTP client.
	HTTPOptions slurphttp.Options
}

// Repo is a repository on a remote forge.
type Repo struct {
	url    string
	opts   Options
	client *slurphttp.Client
}

// New returns a Repo for the repository at repoURL,
// e.g. https://gitea.example.com/owner/name.
func New(repoURL string, opts Options) (*Repo, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse repository URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", u.Scheme)
	}

	if opts.Ref == "" {
		opts.Ref = DefaultRef
	}
	if opts.ListPath == "" {
		opts.ListPath = DefaultListPath
	}
	if opts.RawPath == "" {
		opts.RawPath = DefaultRawPath
	}
	if opts.HTTPOptions.Timeout == 0 {
		opts.HTTPOptions = slurphttp.DefaultOptions()
	}

	return &Repo{
		url:    strings.TrimSuffix(repoURL, "/"),
		opts:   opts,
		client: slurphttp.NewClient(opts.HTTPOptions),
	}, nil
}

// URL returns the repository URL.
func (r *Repo) URL() string { return r.url }

// Ref returns the branch being fetched.
func (r *Repo) Ref() string { return r.opts.Ref }

// ListURL returns the URL of the file listing.
func (r *Repo) ListURL() string {
	return r.url + r.expand(r.opts.ListPath)
}

// RawURL returns the URL of the raw content of path.
func (r *Repo) RawURL(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return r.url + r.expand(r.opts.RawPath) + strings.Join(segments, "/")
}

func (r *Repo) expand(p string) string {
	return strings.ReplaceAll(p, "{ref}", url.PathEscape(r.opts.Ref))
}

// List returns the paths of all files in the repository, in the order
// the forge lists them.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	var raw json.RawMessage
	if err := r.client.GetJSON(ctx, r.ListURL(), &raw); err != nil {
		return nil, fmt.Errorf("remote: list %s: %w", r.url, err)
	}

	paths, err := decodeListing(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: list %s: %w", r.url, err)
	}
	return paths, nil
}

// Fetch returns the raw content of path.
func (r *Repo) Fetch(ctx context.Context, path string) ([]byte, error) {
	return r.client.GetBytes(ctx, r.RawURL(path))
}

// treeListing is the git trees API format used by Gitea and GitHub.
type treeListing struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// ErrTruncated is returned when the forge truncated a tree listing.
var ErrTruncated = errors.New("remote: listing truncated by server")

// decodeListing accepts either a JSON array of paths or a git trees object,
// keeping only blob entries of the latter.
func decodeListing(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '[' {
		var paths []string
		if err := json.Unmarshal(raw, &paths); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		return paths, nil
	}

	var tree treeListing
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if tree.Truncated {
		return nil, ErrTruncated
	}

	paths := make([]string, 0, len(tree.Tree))
	for _, e := range tree.Tree {
		if e.Type == "blob" {
			paths = append(paths, e.Path)
		}
	}
	return paths, nil
}
