package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"booklib/internal/books"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeLibrary is an in-memory books service speaking the REST contract.
type fakeLibrary struct {
	mu       sync.Mutex
	books    []books.Book
	nextID   int64
	requests []*http.Request
	fail     map[string]int // "METHOD path" -> forced status
	failBody string
}

func newFakeLibrary(seed ...books.Book) *fakeLibrary {
	f := &fakeLibrary{books: seed, nextID: 1, fail: map[string]int{}}
	for _, b := range seed {
		if b.ID >= f.nextID {
			f.nextID = b.ID + 1
		}
	}
	return f
}

func (f *fakeLibrary) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.books)
	})
	mux.HandleFunc("POST /books", func(w http.ResponseWriter, r *http.Request) {
		var in books.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		b := in.WithID(f.nextID)
		f.nextID++
		f.books = append(f.books, b)
		writeJSON(w, http.StatusCreated, b)
	})
	mux.HandleFunc("PUT /books/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var in books.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		for i := range f.books {
			if f.books[i].ID == id {
				f.books[i] = in.WithID(id)
				writeJSON(w, http.StatusOK, f.books[i])
				return
			}
		}
		http.Error(w, "Book not found", http.StatusNotFound)
	})
	mux.HandleFunc("DELETE /books/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		for i := range f.books {
			if f.books[i].ID == id {
				f.books = append(f.books[:i], f.books[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		http.Error(w, "Book not found", http.StatusNotFound)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, r.Clone(context.Background()))
		if status, ok := f.fail[r.Method+" "+r.URL.Path]; ok {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(f.failBody))
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var dune = books.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Rating: 4.5, Category: "Sci-Fi", CoverURL: "https://x/d.jpg"}

func setup(t *testing.T, seed ...books.Book) (*Client, *fakeLibrary) {
	t.Helper()
	lib := newFakeLibrary(seed...)
	srv := httptest.NewServer(lib.handler())
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, lib
}

func TestClient_List(t *testing.T) {
	c, lib := setup(t, dune)

	got, err := c.List(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff([]books.Book{dune}, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, lib.requests, 1)
	req := lib.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/books", req.URL.Path)
	assert.Equal(t, "no-store", req.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", req.Header.Get("Pragma"))
	assert.NotEmpty(t, req.Header.Get(RequestIDHeader))
}

func TestClient_ListEmptyIsNotNil(t *testing.T) {
	c, _ := setup(t)

	got, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClient_Create(t *testing.T) {
	c, lib := setup(t, dune)

	in := books.Input{Title: "It", Author: "Stephen King", Rating: 4, Category: "Horror", CoverURL: "https://x/i.jpg"}
	got, err := c.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.WithID(2), got)

	req := lib.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestClient_CreateSendsInputShape(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, dune)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Create(context.Background(), dune.Input())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"title":    "Dune",
		"author":   "Frank Herbert",
		"rating":   4.5,
		"category": "Sci-Fi",
		"coverUrl": "https://x/d.jpg",
	}, body)
}

func TestClient_Update(t *testing.T) {
	c, lib := setup(t, dune)

	in := dune.Input()
	in.Rating = 5
	got, err := c.Update(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Rating)
	assert.Equal(t, int64(1), got.ID)

	req := lib.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/books/1", req.URL.Path)
}

func TestClient_Delete(t *testing.T) {
	c, lib := setup(t, dune)

	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Empty(t, lib.books)
	assert.Equal(t, "/books/1", lib.requests[0].URL.Path)
}

func TestClient_DeleteIgnoresBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("deleted, not json"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	assert.NoError(t, c.Delete(context.Background(), 9))
}

func TestClient_NonSuccessUsesBodyText(t *testing.T) {
	c, lib := setup(t, dune)
	lib.fail["GET /books"] = http.StatusInternalServerError
	lib.failBody = "database is down\n"

	_, err := c.List(context.Background())
	require.Error(t, err)

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusInternalServerError, re.Status)
	assert.Equal(t, "database is down", re.Error())
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestClient_NonSuccessEmptyBodyFallsBack(t *testing.T) {
	c, lib := setup(t, dune)
	lib.fail["DELETE /books/1"] = http.StatusForbidden

	err := c.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "Request failed: 403", err.Error())
	assert.Len(t, lib.books, 1, "failed delete must not be applied")
}

func TestClient_NotFound(t *testing.T) {
	c, _ := setup(t, dune)

	_, err := c.Update(context.Background(), 42, dune.Input())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, "Book not found", err.Error())
}

func TestClient_BadJSONIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.List(context.Background())
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusOK, re.Status)
	assert.NotNil(t, re.Unwrap())
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, WithHTTPClient(&http.Client{Transport: &http.Transport{DisableKeepAlives: true}}))
	require.NoError(t, err)

	_, err = c.List(context.Background())
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 0, re.Status)
	assert.NotEmpty(t, re.Message)
}

func TestClient_NoRetry(t *testing.T) {
	c, lib := setup(t)
	lib.fail["POST /books"] = http.StatusServiceUnavailable

	_, err := c.Create(context.Background(), dune.Input())
	require.Error(t, err)
	assert.Len(t, lib.requests, 1)
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost:3001")
	assert.Error(t, err)

	_, err = NewClient("/books")
	assert.Error(t, err)
}

func TestNewClient_KeepsBasePath(t *testing.T) {
	c, err := NewClient("http://example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/books", c.collection())
	assert.Equal(t, "http://example.com/api/books/7", c.item(7))
	assert.Equal(t, "http://example.com/api", c.BaseURL())
}
