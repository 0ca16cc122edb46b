package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch_PrefixesReaderURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("# Page\n\nBody"))
	}))
	defer srv.Close()

	f := NewPageFetcher(srv.URL+"/", time.Second, nil)
	md, err := f.Fetch(context.Background(), "  https://example.com/docs  ")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if md != "# Page\n\nBody" {
		t.Errorf("Unexpected body: %q", md)
	}
	if gotPath != "/https://example.com/docs" {
		t.Errorf("Reader received path %q", gotPath)
	}
}

func TestFetch_RejectsInvalidURL(t *testing.T) {
	f := NewPageFetcher("http://127.0.0.1:1/", time.Second, nil)

	for _, u := range []string{"", "example.com", "ftp://example.com", "file:///etc/passwd"} {
		_, err := f.Fetch(context.Background(), u)
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Fetch(%q): expected ErrInvalidURL, got %v", u, err)
		}
	}
}

func TestFetch_HTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewPageFetcher(srv.URL+"/", time.Second, nil)
	_, err := f.Fetch(context.Background(), "https://example.com")
	if err == nil {
		t.Fatal("Expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("Error should mention status, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewPageFetcher(srv.URL+"/", 50*time.Millisecond, nil)
	start := time.Now()
	if _, err := f.Fetch(context.Background(), "https://example.com"); err == nil {
		t.Fatal("Expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Timeout not enforced, took %v", elapsed)
	}
}

func TestFetchPageMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("markdown"))
	}))
	defer srv.Close()

	f := NewPageFetcher(srv.URL+"/", time.Second, nil)
	_, out, err := f.FetchPageMarkdown(context.Background(), nil, FetchPageMarkdownInput{URL: "http://example.com "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.URL != "http://example.com" || out.Markdown != "markdown" {
		t.Errorf("Unexpected output: %+v", out)
	}
}

func TestNewPageFetcher_Defaults(t *testing.T) {
	f := NewPageFetcher("", 0, nil)
	if f.baseURL != DefaultReaderBaseURL {
		t.Errorf("baseURL = %q", f.baseURL)
	}
	if f.client.Timeout != DefaultFetchTimeout {
		t.Errorf("timeout = %v", f.client.Timeout)
	}
}
