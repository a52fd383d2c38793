// Package http provides the HTTP client used to talk to the remote forge.
//
// This package handles:
//   - Connection pooling sized for the worker count
//   - Plain GET requests returning the body, its bytes, or decoded JSON
//   - Mapping non-success status codes to sentinel errors
//
// Every call performs exactly one request. Failed requests are not retried.
//
// # Usage
//
//	client := http.NewClient(http.Options{
//	    MaxIdleConnsPerHost: 16,
//	    Timeout:             30 * time.Second,
//	})
//
//	var paths []string
//	err := client.GetJSON(ctx, listURL, &paths)
//
//	data, err := client.GetBytes(ctx, rawURL)
package http
