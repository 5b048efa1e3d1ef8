package objstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadReturnsPublicURL(t *testing.T) {
	var gotPath, gotAuth, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "menu-images", "secret")
	url, err := c.Upload(context.Background(), "burger.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/menu-images/burger.png", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", gotBody)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/menu-images/burger.png", url)
}

func TestUploadSurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "missing", "secret")
	_, err := c.Upload(context.Background(), "x.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestPublicURL(t *testing.T) {
	c := NewClient("https://proj.supabase.co/", "menu-images", "k")
	assert.Equal(t,
		"https://proj.supabase.co/storage/v1/object/public/menu-images/a.png",
		c.PublicURL("a.png"))
}
