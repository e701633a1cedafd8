package docs

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoaderFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/one", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><article><h1>Date functions</h1><p>date_trunc truncates a timestamp to the given unit.</p></article></body></html>`)
	})
	mux.HandleFunc("/two", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><article><h1>Window functions</h1><p>ROW_NUMBER assigns a unique sequential number.</p></article></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := NewLoader(2, 0, nil)
	text, err := l.Fetch([]string{srv.URL + "/one", srv.URL + "/two"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if !strings.Contains(text, "date_trunc") || !strings.Contains(text, "ROW_NUMBER") {
		t.Errorf("Fetch() missing page content:\n%s", text)
	}
	// Output order follows the input URL order, not fetch completion.
	if strings.Index(text, "date_trunc") > strings.Index(text, "ROW_NUMBER") {
		t.Error("Fetch() pages not in input order")
	}
}

func TestLoaderFetchPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><p>still works</p></body></html>`)
	}))
	defer srv.Close()

	l := NewLoader(2, 0, nil)
	text, err := l.Fetch([]string{srv.URL + "/missing", srv.URL + "/ok"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !strings.Contains(text, "still works") {
		t.Errorf("Fetch() = %q", text)
	}
}

func TestLoaderFetchAllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	l := NewLoader(1, 0, nil)
	if _, err := l.Fetch([]string{srv.URL + "/gone"}); err == nil {
		t.Error("Fetch() expected error when every page fails")
	}
}

func TestLoaderFetchNoURLs(t *testing.T) {
	l := NewLoader(1, 0, nil)
	if _, err := l.Fetch(nil); err == nil {
		t.Error("Fetch(nil) expected error")
	}
}
