package archive

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"git.handmade.network/hmn/pngscope/src/config"
	"git.handmade.network/hmn/pngscope/src/s3dev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cool_filename.png", SanitizeFilename("cool filename.png"))
	assert.Equal(t, "_cat_.png", SanitizeFilename("🐱cat🐱.png"))
	assert.Equal(t, "unnamed", SanitizeFilename(""))
}

func TestStoreAndFetch(t *testing.T) {
	srv := httptest.NewServer(s3dev.NewHandler(t.TempDir()))
	defer srv.Close()

	ctx := context.Background()
	a, err := New(ctx, config.ArchiveConfig{
		Endpoint: srv.URL,
		Region:   "dummy-region",
		Key:      "dummy",
		Secret:   "dummy",
		Bucket:   "pngs",
	})
	require.Nil(t, err)

	// The bucket doesn't exist yet, so this also covers creating it.
	key, err := a.Store(ctx, "/some/dir/my image.png", []byte("\x89PNG fake"))
	require.Nil(t, err)
	assert.True(t, strings.HasSuffix(key, "/my_image.png"), key)

	content, err := a.Fetch(ctx, key)
	require.Nil(t, err)
	assert.Equal(t, "\x89PNG fake", string(content))

	_, err = a.Fetch(ctx, "missing/key.png")
	assert.NotNil(t, err)
}
