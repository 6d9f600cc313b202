package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"booklib/internal/api"
	"booklib/internal/books"
	"booklib/internal/config"
	"booklib/internal/logging"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// libraryServer is a fake library service backed by a slice.
type libraryServer struct {
	mu       sync.Mutex
	books    []books.Book
	nextID   int64
	failList string
	requests []string
}

func newLibraryServer(t *testing.T, seed ...books.Book) (*libraryServer, *httptest.Server) {
	t.Helper()
	ls := &libraryServer{books: seed, nextID: 100}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /books", func(w http.ResponseWriter, r *http.Request) {
		ls.track(r)
		if ls.failList != "" {
			http.Error(w, ls.failList, http.StatusInternalServerError)
			return
		}
		ls.mu.Lock()
		defer ls.mu.Unlock()
		writeJSON(w, http.StatusOK, ls.books)
	})
	mux.HandleFunc("POST /books", func(w http.ResponseWriter, r *http.Request) {
		ls.track(r)
		var in books.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ls.mu.Lock()
		defer ls.mu.Unlock()
		b := in.WithID(ls.nextID)
		ls.nextID++
		ls.books = append(ls.books, b)
		writeJSON(w, http.StatusCreated, b)
	})
	mux.HandleFunc("PUT /books/{id}", func(w http.ResponseWriter, r *http.Request) {
		ls.track(r)
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var in books.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ls.mu.Lock()
		defer ls.mu.Unlock()
		for i := range ls.books {
			if ls.books[i].ID == id {
				ls.books[i] = in.WithID(id)
				writeJSON(w, http.StatusOK, ls.books[i])
				return
			}
		}
		http.Error(w, "Book not found", http.StatusNotFound)
	})
	mux.HandleFunc("DELETE /books/{id}", func(w http.ResponseWriter, r *http.Request) {
		ls.track(r)
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		ls.mu.Lock()
		defer ls.mu.Unlock()
		for i := range ls.books {
			if ls.books[i].ID == id {
				ls.books = append(ls.books[:i], ls.books[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		http.Error(w, "Book not found", http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return ls, srv
}

func (ls *libraryServer) track(r *http.Request) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.requests = append(ls.requests, r.Method+" "+r.URL.Path)
}

func (ls *libraryServer) snapshot() []books.Book {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]books.Book(nil), ls.books...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var (
	dune = books.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Rating: 4.5, Category: "Sci-Fi", CoverURL: "https://covers.example/dune.jpg"}
	nef  = books.Book{ID: 3, Title: "Nineteen Eighty-Four", Author: "George Orwell", Rating: 5, Category: "Dystopia", CoverURL: "https://covers.example/1984.jpg"}
)

// useServer points the CLI globals at srv.
func useServer(t *testing.T, srv *httptest.Server) {
	t.Helper()
	logger = zap.NewNop()
	workspace = t.TempDir()
	cfg = config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	t.Cleanup(func() {
		cfg = nil
		workspace = ""
	})
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var err error
	output := captureOutput(t, func() {
		err = cmd.Execute()
	})
	return output, err
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}

// =============================================================================
// LIST
// =============================================================================

func TestListPrintsTable(t *testing.T) {
	_, srv := newLibraryServer(t, dune, nef)
	useServer(t, srv)

	output, err := execute(t, newListCmd())
	require.NoError(t, err)

	assert.Contains(t, output, "Title")
	assert.Contains(t, output, "Dune")
	assert.Contains(t, output, "George Orwell")
	assert.Contains(t, output, "★★★★★ 5.0")
	assert.Less(t, strings.Index(output, "Dune"), strings.Index(output, "Nineteen"), "server order is kept")
}

func TestListQuery(t *testing.T) {
	_, srv := newLibraryServer(t, dune, nef)
	useServer(t, srv)

	output, err := execute(t, newListCmd(), "--query", "orw")
	require.NoError(t, err)

	assert.Contains(t, output, "Nineteen Eighty-Four")
	assert.NotContains(t, output, "Dune")
}

func TestListEmpty(t *testing.T) {
	_, srv := newLibraryServer(t)
	useServer(t, srv)

	output, err := execute(t, newListCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "No books found")
}

func TestListServerError(t *testing.T) {
	ls, srv := newLibraryServer(t, dune)
	ls.failList = "database offline"
	useServer(t, srv)

	_, err := execute(t, newListCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
	assert.Contains(t, err.Error(), "(HTTP 500)")
}

// =============================================================================
// ADD / EDIT / DELETE
// =============================================================================

func TestAddValidationNeverCallsService(t *testing.T) {
	ls, srv := newLibraryServer(t)
	useServer(t, srv)

	output, err := execute(t, newAddCmd(), "--author", "Frank Herbert", "--rating", "7", "--cover", "nope")
	require.Error(t, err)

	assert.Contains(t, output, books.MsgTitleRequired)
	assert.Contains(t, output, books.MsgCategoryRequired)
	assert.Contains(t, output, books.MsgRatingMax)
	assert.Contains(t, output, books.MsgCoverURLInvalid)
	assert.NotContains(t, output, books.MsgAuthorRequired)
	assert.Empty(t, ls.requests)
}

func TestAddCreatesBook(t *testing.T) {
	ls, srv := newLibraryServer(t, dune)
	useServer(t, srv)

	output, err := execute(t, newAddCmd(),
		"--title", "It", "--author", "Stephen King", "--category", "Horror",
		"--cover", "https://covers.example/it.jpg")
	require.NoError(t, err)

	assert.Contains(t, output, `Added #100 "It" by Stephen King`)
	got := ls.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, 4.0, got[1].Rating, "rating defaults to 4")
	assert.Equal(t, []string{"POST /books"}, ls.requests)
}

func TestEditKeepsUnsetFields(t *testing.T) {
	ls, srv := newLibraryServer(t, dune, nef)
	useServer(t, srv)

	output, err := execute(t, newEditCmd(), "1", "--rating", "5")
	require.NoError(t, err)
	assert.Contains(t, output, `Updated #1 "Dune"`)

	got := ls.snapshot()
	want := dune
	want.Rating = 5
	assert.Equal(t, []books.Book{want, nef}, got)
}

func TestEditInvalidRating(t *testing.T) {
	ls, srv := newLibraryServer(t, dune)
	useServer(t, srv)

	output, err := execute(t, newEditCmd(), "1", "--rating", "abc")
	require.Error(t, err)
	assert.Contains(t, output, books.MsgRatingNotNumber)
	assert.Equal(t, []string{"GET /books"}, ls.requests)
}

func TestEditNotFound(t *testing.T) {
	_, srv := newLibraryServer(t, dune)
	useServer(t, srv)

	_, err := execute(t, newEditCmd(), "42", "--title", "Ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "book 42 not found")
}

func TestEditBadID(t *testing.T) {
	_, srv := newLibraryServer(t)
	useServer(t, srv)

	_, err := execute(t, newEditCmd(), "one")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid book id "one"`)
}

func TestDeleteWithYes(t *testing.T) {
	ls, srv := newLibraryServer(t, dune, nef)
	useServer(t, srv)

	output, err := execute(t, newDeleteCmd(), "3", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, `Deleted #3 "Nineteen Eighty-Four"`)
	assert.Equal(t, []books.Book{dune}, ls.snapshot())
}

func TestServiceErrorAddsStatus(t *testing.T) {
	_, srv := newLibraryServer(t)
	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	err = serviceError("failed to delete book 1", client.Delete(context.Background(), 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete book 1 (HTTP 404)")
	assert.Contains(t, err.Error(), "Book not found")

	err = serviceError("failed to load books", errors.New("connection refused"))
	assert.EqualError(t, err, "failed to load books: connection refused")
}

func TestDeletePromptCancelled(t *testing.T) {
	ls, srv := newLibraryServer(t, dune)
	useServer(t, srv)

	confirmInput = strings.NewReader("n\n")
	t.Cleanup(func() { confirmInput = os.Stdin })

	output, err := execute(t, newDeleteCmd(), "1")
	require.NoError(t, err)
	assert.Contains(t, output, `This will permanently remove "Dune"`)
	assert.Contains(t, output, "Cancelled")
	assert.Len(t, ls.snapshot(), 1)
}

func TestDeletePromptConfirmed(t *testing.T) {
	ls, srv := newLibraryServer(t, dune)
	useServer(t, srv)

	confirmInput = strings.NewReader("yes\n")
	t.Cleanup(func() { confirmInput = os.Stdin })

	_, err := execute(t, newDeleteCmd(), "1")
	require.NoError(t, err)
	assert.Empty(t, ls.snapshot())
}

// =============================================================================
// CONFIG
// =============================================================================

func TestLoadConfigFlagWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://from-file:3001\n"), 0644))
	t.Setenv("BOOKLIB_API_URL", "http://from-env:3001")

	configPath, apiURL, workspace = path, "http://from-flag:3001", dir
	t.Cleanup(func() { configPath, apiURL, workspace, cfg = "", "", "", nil })

	require.NoError(t, loadConfig())
	assert.Equal(t, "http://from-flag:3001", cfg.API.BaseURL)
}

func TestLoadConfigRejectsBadURL(t *testing.T) {
	dir := t.TempDir()
	configPath, apiURL, workspace = filepath.Join(dir, "missing.yaml"), "localhost", dir
	t.Cleanup(func() { configPath, apiURL, workspace, cfg = "", "", "", nil })

	err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api base_url")
}

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "add", "edit", "delete"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("api-url"))
}

func TestRootRunsSubcommandWithVerboseLogging(t *testing.T) {
	_, srv := newLibraryServer(t, dune)
	t.Setenv("BOOKLIB_API_URL", "")
	t.Cleanup(func() {
		logging.CloseAll()
		verbose, configPath, apiURL, workspace, cfg = false, "", "", "", nil
		rootCmd.SetArgs(nil)
	})

	output, err := execute(t, rootCmd, "--verbose", "--workspace", t.TempDir(), "--api-url", srv.URL, "list")
	require.NoError(t, err)

	assert.Contains(t, output, "Dune")
	assert.Contains(t, output, "configuration loaded", "verbose subcommands log to stderr")
}
