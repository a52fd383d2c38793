// Package testutils provides shared test infrastructure.
package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// RepoPath is the path of the repository served by a Forge.
const RepoPath = "/owner/repo"

const (
	listPath = RepoPath + "/tree-list/branch/master"
	rawPath  = RepoPath + "/raw/branch/master/"
)

// Forge is a fake Gitea instance hosting a single repository on the
// master branch.
type Forge struct {
	*httptest.Server

	// RepoURL is the URL of the hosted repository.
	RepoURL string

	mu         sync.Mutex
	files      map[string][]byte
	listing    []string
	fetched    map[string]int
	listStatus int
}

// StartForge serves files. Paths in listing that are missing from files
// answer 404 on download. A nil listing lists every file in sorted order.
func StartForge(t *testing.T, files map[string][]byte, listing []string) *Forge {
	t.Helper()

	if listing == nil {
		listing = make([]string, 0, len(files))
		for p := range files {
			listing = append(listing, p)
		}
		sort.Strings(listing)
	}

	f := &Forge{
		files:   files,
		listing: listing,
		fetched: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	f.RepoURL = f.Server.URL + RepoPath
	t.Cleanup(f.Server.Close)
	return f
}

func (f *Forge) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == listPath:
		if f.listStatus != 0 {
			http.Error(w, http.StatusText(f.listStatus), f.listStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.listing)
	case strings.HasPrefix(r.URL.Path, rawPath):
		p := strings.TrimPrefix(r.URL.Path, rawPath)
		f.fetched[p]++
		data, ok := f.files[p]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

// FailListing makes the listing endpoint answer with status.
func (f *Forge) FailListing(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listStatus = status
}

// Fetched returns how often path was downloaded.
func (f *Forge) Fetched(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched[path]
}

// GenerateTestData returns size bytes of deterministic content.
func GenerateTestData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}
