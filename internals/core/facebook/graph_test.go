package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/12345/photos", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "https://res.cloudinary.com/pan.jpg", r.PostForm.Get("url"))
		assert.Equal(t, "Pan dulce", r.PostForm.Get("caption"))
		assert.Equal(t, "page-token", r.PostForm.Get("access_token"))
		_, _ = w.Write([]byte(`{"id":"photo_1","post_id":"12345_678"}`))
	}))
	defer srv.Close()

	c := NewClient("12345", "page-token", srv.URL)
	postID, err := c.PublishPhoto(context.Background(), "https://res.cloudinary.com/pan.jpg", "Pan dulce")

	require.NoError(t, err)
	assert.Equal(t, "12345_678", postID)
}

func TestPublishPhotoGraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","code":190}}`))
	}))
	defer srv.Close()

	_, err := NewClient("12345", "expired", srv.URL).PublishPhoto(context.Background(), "u", "c")
	assert.EqualError(t, err, "graph returned 400: Invalid OAuth access token.")
}

func TestPublishPhotoNotConfigured(t *testing.T) {
	c := NewClient("", "", "https://graph.facebook.com/v19.0")
	assert.False(t, c.Enabled())

	_, err := c.PublishPhoto(context.Background(), "u", "c")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
