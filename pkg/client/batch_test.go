package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringItem(name, contentType, data string) *Item {
	return &Item{
		Name:        name,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(data)), nil
		},
	}
}

// relayStub answers like the relay and records per-request observations.
func relayStub(t *testing.T, handler func(w http.ResponseWriter, filename string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/upload/image", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		handler(w, hdr.Filename)
	}))
}

func TestBatch_SequentialSubmissionOrder(t *testing.T) {
	var inFlight int32
	var maxInFlight int32
	var order []string

	srv := relayStub(t, func(w http.ResponseWriter, filename string) {
		n := atomic.AddInt32(&inFlight, 1)
		if n > atomic.LoadInt32(&maxInFlight) {
			atomic.StoreInt32(&maxInFlight, n)
		}
		time.Sleep(10 * time.Millisecond)
		order = append(order, filename)
		atomic.AddInt32(&inFlight, -1)

		json.NewEncoder(w).Encode(UploadResponse{
			Success: true,
			URL:     "https://res.example.com/uploads/" + filename,
		})
	})
	defer srv.Close()

	items := []*Item{
		stringItem("1.jpg", "image/jpeg", "a"),
		stringItem("2.jpg", "image/jpeg", "b"),
		stringItem("3.jpg", "image/jpeg", "c"),
	}
	batch := NewBatch(New(srv.URL), "uploads", items)

	var uploadingSeen int32
	batch.OnChange(func(index int, item *Item) {
		if item.Status == StatusUploading {
			atomic.AddInt32(&uploadingSeen, 1)
		}
	})

	require.NoError(t, batch.Run(context.Background()))

	assert.Equal(t, int32(1), maxInFlight, "never two uploads in flight")
	assert.Equal(t, []string{"1.jpg", "2.jpg", "3.jpg"}, order, "dispatch follows submission order")
	assert.Equal(t, int32(3), uploadingSeen)
	assert.Equal(t, 3, batch.CompletedCount())

	for _, item := range items {
		assert.Equal(t, StatusCompleted, item.Status)
		assert.NotEmpty(t, item.URL)
	}
}

func TestBatch_ErrorItemDoesNotStopBatch(t *testing.T) {
	srv := relayStub(t, func(w http.ResponseWriter, filename string) {
		if filename == "2.jpg" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadResponse{Success: false, Error: "Invalid file type. Only JPG, JPEG, PNG, and WEBP are allowed."})
			return
		}
		json.NewEncoder(w).Encode(UploadResponse{Success: true, URL: "https://x/" + filename})
	})
	defer srv.Close()

	items := []*Item{
		stringItem("1.jpg", "image/jpeg", "a"),
		stringItem("2.jpg", "image/jpeg", "b"),
		stringItem("3.jpg", "image/jpeg", "c"),
	}
	batch := NewBatch(New(srv.URL), "uploads", items)
	require.NoError(t, batch.Run(context.Background()))

	assert.Equal(t, StatusCompleted, items[0].Status)
	assert.Equal(t, StatusError, items[1].Status)
	assert.Equal(t, "Invalid file type. Only JPG, JPEG, PNG, and WEBP are allowed.", items[1].Err)
	assert.Equal(t, StatusCompleted, items[2].Status)
	assert.Equal(t, 2, batch.CompletedCount())
}

func TestBatch_StatusOnlyMovesForward(t *testing.T) {
	srv := relayStub(t, func(w http.ResponseWriter, filename string) {
		json.NewEncoder(w).Encode(UploadResponse{Success: true, URL: "https://x/" + filename})
	})
	defer srv.Close()

	items := []*Item{stringItem("1.jpg", "image/jpeg", "a")}
	batch := NewBatch(New(srv.URL), "uploads", items)

	var transitions []Status
	batch.OnChange(func(index int, item *Item) {
		transitions = append(transitions, item.Status)
	})

	require.NoError(t, batch.Run(context.Background()))
	assert.Equal(t, []Status{StatusUploading, StatusCompleted}, transitions)
}

func TestBatch_ContextCancelled(t *testing.T) {
	srv := relayStub(t, func(w http.ResponseWriter, filename string) {
		json.NewEncoder(w).Encode(UploadResponse{Success: true, URL: "https://x/" + filename})
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []*Item{stringItem("1.jpg", "image/jpeg", "a")}
	batch := NewBatch(New(srv.URL), "uploads", items)
	err := batch.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, StatusPending, items[0].Status)
}

func TestClient_UploadImage_AuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(UploadResponse{Success: true, URL: "https://x/a.jpg"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok123"))
	_, err := c.UploadImage(context.Background(), strings.NewReader("x"), "a.jpg", "image/jpeg", "uploads")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestClient_UploadImage_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.UploadImage(context.Background(), strings.NewReader("x"), "a.jpg", "image/jpeg", "")
	require.Error(t, err)
	assert.Equal(t, "Upload failed", err.Error())
}

func TestClient_UploadImage_SendsDeclaredContentType(t *testing.T) {
	var gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		gotCT = hdr.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(UploadResponse{Success: true, URL: "https://x/a.webp"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.UploadImage(context.Background(), strings.NewReader("x"), "a.webp", "image/webp", "")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", gotCT)
}

func TestClient_UploadImage_FolderField(t *testing.T) {
	var gotFolder string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFolder = r.FormValue("folder")
		fmt.Fprint(w, `{"success":true,"url":"https://x/a.jpg"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.UploadImage(context.Background(), strings.NewReader("x"), "a.jpg", "image/jpeg", "photos")
	require.NoError(t, err)
	assert.Equal(t, "photos", gotFolder)
}
