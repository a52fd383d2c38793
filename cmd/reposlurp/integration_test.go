//go:build integration

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ligustah/reposlurp/internal/testutils"
)

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	files := make(map[string][]byte)
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("data/part-%02d.bin", i)] = testutils.GenerateTestData(64 * 1024)
	}
	forge := testutils.StartForge(t, files, nil)

	t.Log("Starting Minio container...")
	minio := testutils.StartMinioContainer(t, ctx, "cli-test-bucket")
	defer func() {
		if err := minio.Close(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	}()

	dest := minio.BucketURL("checkout/")
	manifestPath := filepath.Join(t.TempDir(), "repo.json")

	t.Run("fetch", func(t *testing.T) {
		code, _, stderr := runCLI(t, "fetch",
			"--repo", forge.RepoURL,
			"--dest", dest,
			"--workers", "4",
			"--manifest", manifestPath,
		)
		if code != ExitSuccess {
			t.Fatalf("fetch failed with exit code %d: %s", code, stderr)
		}
	})

	t.Run("verify", func(t *testing.T) {
		code, _, stderr := runCLI(t, "verify", "--dest", dest, "--manifest", manifestPath)
		if code != ExitSuccess {
			t.Fatalf("verify failed with exit code %d: %s", code, stderr)
		}
	})

	t.Run("verify_after_delete", func(t *testing.T) {
		bkt, err := minio.OpenBucket(ctx)
		if err != nil {
			t.Fatalf("open bucket: %v", err)
		}
		defer bkt.Close()
		if err := bkt.Delete(ctx, "checkout/data/part-03.bin"); err != nil {
			t.Fatalf("delete: %v", err)
		}

		code, _, _ := runCLI(t, "verify", "--dest", dest, "--manifest", manifestPath)
		if code != ExitValidationFailed {
			t.Fatalf("expected exit code %d, got %d", ExitValidationFailed, code)
		}
	})
}
