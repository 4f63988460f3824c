// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/kraklabs/xvc/pkg/diff"
	"github.com/kraklabs/xvc/pkg/digest"
)

// UrlGetDep invalidates a step when a URL's response body changes,
// hashed via digest.UrlGetDigest. Head carries the same ETag/
// Last-Modified digest UrlHeadDep uses, captured alongside the GET so
// DiffSuperficial can check it without a body download.
type UrlGetDep struct {
	URL  string
	Body digest.UrlGetDigest
	Head digest.UrlHeadDigest
}

func (UrlGetDep) Kind() Kind              { return KindUrlGet }
func (UrlGetDep) TypeDescription() string { return "url-get-dependency" }

// DiffSuperficial compares only the ETag/Last-Modified digest, per
// spec.md §4.6's table — it never re-downloads the body.
func (UrlGetDep) DiffSuperficial(record, actual UrlGetDep) diff.Diff[UrlGetDep] {
	if record.URL == actual.URL && record.Head.Digest() == actual.Head.Digest() {
		return diff.Diff[UrlGetDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[UrlGetDep]{Case: diff.Different, Record: record, Actual: actual}
}

// DiffThorough compares the GET body digest, requiring the caller to
// have actually downloaded actual's body.
func (UrlGetDep) DiffThorough(record, actual UrlGetDep) diff.Diff[UrlGetDep] {
	if record.URL == actual.URL && record.Body.Digest() == actual.Body.Digest() {
		return diff.Diff[UrlGetDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[UrlGetDep]{Case: diff.Different, Record: record, Actual: actual}
}

// UrlHeadDep invalidates a step when a URL's ETag or Last-Modified
// header changes — cheap to check on every invocation since it never
// downloads the body, which is why upstream xvc (and this port) offer
// it as a distinct, lighter-weight sibling to UrlGetDep.
type UrlHeadDep struct {
	URL  string
	Head digest.UrlHeadDigest
}

func (UrlHeadDep) Kind() Kind              { return KindUrlHead }
func (UrlHeadDep) TypeDescription() string { return "url-head-dependency" }

func (UrlHeadDep) DiffSuperficial(record, actual UrlHeadDep) diff.Diff[UrlHeadDep] {
	return UrlHeadDep{}.DiffThorough(record, actual)
}

func (UrlHeadDep) DiffThorough(record, actual UrlHeadDep) diff.Diff[UrlHeadDep] {
	if record.URL == actual.URL && record.Head.Digest() == actual.Head.Digest() {
		return diff.Diff[UrlHeadDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[UrlHeadDep]{Case: diff.Different, Record: record, Actual: actual}
}

// retryConfig governs FetchGet/FetchHead's backoff. maxRetries counts
// total attempts, not retries after the first; spec.md §4.7 allows
// exactly one retry on a 5xx/timeout, so it is 2 here. base/mult/
// maxBackoff are grounded on the teacher's embedding.go retry defaults.
type retryConfig struct {
	maxRetries int
	base       time.Duration
	mult       float64
	maxBackoff time.Duration
}

var defaultRetryConfig = retryConfig{maxRetries: 2, base: 200 * time.Millisecond, mult: 2.0, maxBackoff: 5 * time.Second}

// computeBackoffWithJitter reproduces the teacher's full-jitter
// exponential backoff (pkg/ingestion/embedding.go) verbatim: compute
// base*mult^attempt capped at maxBackoff, then pick uniformly in
// [0, cap].
func computeBackoffWithJitter(base time.Duration, attempt int, mult float64, capDur time.Duration) time.Duration {
	exp := float64(base)
	for i := 0; i < attempt; i++ {
		exp *= mult
	}
	d := time.Duration(exp)
	if d > capDur {
		d = capDur
	}
	if d <= 0 {
		return base
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}

// isRetryableHTTPError classifies transport failures and 429/5xx
// responses as retryable, 4xx as not — the same split the teacher
// draws in isRetryableEmbeddingError (pkg/ingestion/embedding.go).
func isRetryableHTTPError(err error, statusCode int) bool {
	if err != nil {
		msg := strings.ToLower(err.Error())
		for _, s := range []string{"timeout", "temporarily unavailable", "connection refused", "connection reset", "deadline exceeded", "eof"} {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
	return statusCode == 429 || (statusCode >= 500 && statusCode < 600)
}

// FetchGet retrieves url with retry, returning a UrlGetDep whose Body
// digest reflects the final successful response and whose Head digest
// is captured from the same response, so DiffSuperficial has an
// ETag/Last-Modified baseline without a separate HEAD round-trip.
func FetchGet(ctx context.Context, client *http.Client, url string, algorithm digest.HashAlgorithm) (UrlGetDep, error) {
	var lastErr error
	for attempt := 0; attempt < defaultRetryConfig.maxRetries; attempt++ {
		body, etag, lastModified, status, err := doRequest(ctx, client, http.MethodGet, url)
		if err == nil && status < 400 {
			d, digestErr := digest.NewUrlGetDigest(body, algorithm)
			if digestErr != nil {
				return UrlGetDep{}, digestErr
			}
			h, digestErr := digest.NewUrlHeadDigest(etag, lastModified, algorithm)
			if digestErr != nil {
				return UrlGetDep{}, digestErr
			}
			return UrlGetDep{URL: url, Body: d, Head: h}, nil
		}
		lastErr = classifyHTTPError(err, status)
		if !isRetryableHTTPError(err, status) || attempt == defaultRetryConfig.maxRetries-1 {
			break
		}
		sleep := computeBackoffWithJitter(defaultRetryConfig.base, attempt, defaultRetryConfig.mult, defaultRetryConfig.maxBackoff)
		select {
		case <-ctx.Done():
			return UrlGetDep{}, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return UrlGetDep{}, lastErr
}

// FetchHead retrieves url's ETag/Last-Modified headers with the same
// retry policy as FetchGet.
func FetchHead(ctx context.Context, client *http.Client, url string, algorithm digest.HashAlgorithm) (UrlHeadDep, error) {
	var lastErr error
	for attempt := 0; attempt < defaultRetryConfig.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return UrlHeadDep{}, err
		}
		resp, doErr := client.Do(req)
		status := 0
		var etag, lastModified string
		if resp != nil {
			status = resp.StatusCode
			etag = resp.Header.Get("ETag")
			lastModified = resp.Header.Get("Last-Modified")
			resp.Body.Close()
		}
		if doErr == nil && status < 400 {
			d, digestErr := digest.NewUrlHeadDigest(etag, lastModified, algorithm)
			if digestErr != nil {
				return UrlHeadDep{}, digestErr
			}
			return UrlHeadDep{URL: url, Head: d}, nil
		}
		lastErr = classifyHTTPError(doErr, status)
		if !isRetryableHTTPError(doErr, status) || attempt == defaultRetryConfig.maxRetries-1 {
			break
		}
		sleep := computeBackoffWithJitter(defaultRetryConfig.base, attempt, defaultRetryConfig.mult, defaultRetryConfig.maxBackoff)
		select {
		case <-ctx.Done():
			return UrlHeadDep{}, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return UrlHeadDep{}, lastErr
}

func doRequest(ctx context.Context, client *http.Client, method, url string) (body, etag, lastModified string, status int, err error) {
	req, reqErr := http.NewRequestWithContext(ctx, method, url, nil)
	if reqErr != nil {
		return "", "", "", 0, reqErr
	}
	resp, doErr := client.Do(req)
	if doErr != nil {
		return "", "", "", 0, doErr
	}
	defer resp.Body.Close()
	etag = resp.Header.Get("ETag")
	lastModified = resp.Header.Get("Last-Modified")
	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", etag, lastModified, resp.StatusCode, readErr
	}
	return string(raw), etag, lastModified, resp.StatusCode, nil
}

func classifyHTTPError(err error, status int) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("dependency: unexpected HTTP status %d", status)
}
