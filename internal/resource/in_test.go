package resource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/s3-resource/internal/errs"
)

func epochPlus(hours int) time.Time {
	return time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}

func inRequest(key string, mode Mode, regexp, policy string) Request {
	req := checkRequest(regexp, policy)
	if key != "" {
		req.Version = &Version{Key: key}
	}
	req.Params.Mode = mode
	return req
}

var bookKeys = []string{
	"book/m40001/index.cnxml",
	"book/m40001/figure.png",
	"book/m62999/index.cnxml",
	"book/m63000/index.cnxml",
	"book/m63248/index.cnxml",
	"book/m63248/figure.png",
	"collection.xml",
}

func TestIn_Single(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"plain", inRequest("file.txt", ModeSingle, "", "")},
		{"with filters", inRequest("file.txt", ModeSingle, "file.txt", "")},
		{"bad version is not parsed", inRequest("file.txt", ModeSingle, "file.txt", "asdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore("content", "file.txt", "other.txt")
			dest := t.TempDir()

			resp, err := In(testContext(), NewClient(store, "content"), dest, tt.req)
			require.NoError(t, err)

			assert.Equal(t, InResponse{Version: &Version{Key: "file.txt"}}, resp)
			assert.Equal(t, []string{"file.txt"}, store.downloads)
			assert.Equal(t, 0, store.lists)
			assert.FileExists(t, filepath.Join(dest, "file.txt"))
		})
	}
}

func TestIn_SingleNestedKey(t *testing.T) {
	store := newMemStore("content", bookKeys...)
	dest := filepath.Join(t.TempDir(), "not-yet-created")

	req := inRequest("book/m63248/index.cnxml", ModeSingle, `book/m(?P<version>\d+)/index[.].*`, "every")
	resp, err := In(testContext(), NewClient(store, "content"), dest, req)
	require.NoError(t, err)

	assert.Equal(t, "book/m63248/index.cnxml", resp.Version.Key)
	body, err := os.ReadFile(filepath.Join(dest, "book", "m63248", "index.cnxml"))
	require.NoError(t, err)
	assert.Equal(t, "content of book/m63248/index.cnxml", string(body))
}

func TestIn_SingleErrors(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		store := newMemStore("content", "file.txt")
		_, err := In(testContext(), NewClient(store, "content"), t.TempDir(), inRequest("", ModeSingle, "", ""))
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
	})

	t.Run("key escapes destination", func(t *testing.T) {
		store := newMemStore("content", "../escape.txt")
		_, err := In(testContext(), NewClient(store, "content"), t.TempDir(), inRequest("../escape.txt", ModeSingle, "", ""))
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
		assert.Empty(t, store.downloads)
	})

	t.Run("missing object", func(t *testing.T) {
		store := newMemStore("content")
		_, err := In(testContext(), NewClient(store, "content"), t.TempDir(), inRequest("gone.txt", ModeSingle, "", ""))
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestIn_All(t *testing.T) {
	tests := []struct {
		name      string
		regexp    string
		policy    string
		downloads []string
	}{
		{
			name:      "latest",
			regexp:    `book/m(?P<version>\d+)/index[.].*`,
			policy:    "latest",
			downloads: []string{"book/m63248/index.cnxml"},
		},
		{
			name:   "every",
			regexp: `book/m(?P<version>\d+)/index[.].*`,
			policy: "every",
			downloads: []string{
				"book/m40001/index.cnxml", "book/m62999/index.cnxml",
				"book/m63000/index.cnxml", "book/m63248/index.cnxml",
			},
		},
		{
			name:      "threshold",
			regexp:    `book/m(?P<version>\d+)/index[.].*`,
			policy:    "63000",
			downloads: []string{"book/m63000/index.cnxml", "book/m63248/index.cnxml"},
		},
		{
			name:   "zero threshold with extra group",
			regexp: `(book)/m(?P<version>\d+)/.*`,
			policy: "0",
			downloads: []string{
				"book/m40001/index.cnxml", "book/m40001/figure.png", "book/m62999/index.cnxml",
				"book/m63000/index.cnxml", "book/m63248/index.cnxml", "book/m63248/figure.png",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore("content", bookKeys...)

			// The supplied key is echoed whatever gets downloaded.
			req := inRequest("book/m40001/index.cnxml", ModeAll, tt.regexp, tt.policy)
			resp, err := In(testContext(), NewClient(store, "content"), t.TempDir(), req)
			require.NoError(t, err)

			assert.Equal(t, InResponse{Version: &Version{Key: "book/m40001/index.cnxml"}}, resp)
			assert.Equal(t, tt.downloads, store.downloads)
		})
	}
}

func TestIn_AllSkipsExistingFiles(t *testing.T) {
	store := newMemStore("content", "file.txt", "file.text")
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "file.txt"), []byte("local"), 0o644))

	_, err := In(testContext(), NewClient(store, "content"), dest, inRequest("file.text", ModeAll, `file.te?xt`, "every"))
	require.NoError(t, err)

	assert.Equal(t, []string{"file.text"}, store.downloads)
	body, err := os.ReadFile(filepath.Join(dest, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "local", string(body))
}

func TestIn_AllSkipsFolderMarkers(t *testing.T) {
	store := newMemStore("content", "book/", "book/m1/", "book/m1/index.cnxml")
	dest := t.TempDir()

	_, err := In(testContext(), NewClient(store, "content"), dest, inRequest("book/", ModeAll, `book/`, "every"))
	require.NoError(t, err)

	assert.Equal(t, []string{"book/m1/index.cnxml"}, store.downloads)
	assert.DirExists(t, filepath.Join(dest, "book", "m1"))
	assert.FileExists(t, filepath.Join(dest, "book", "m1", "index.cnxml"))
}

func TestIn_AllBadVersion(t *testing.T) {
	store := newMemStore("content", "file.txt")

	_, err := In(testContext(), NewClient(store, "content"), t.TempDir(), inRequest("file.txt", ModeAll, "file.txt", "asdf"))
	require.Error(t, err)
	assert.True(t, errs.IsInvalidVersion(err))
	assert.Empty(t, store.downloads)
}

func TestIn_NoMode(t *testing.T) {
	for _, mode := range []Mode{ModeNone, ModeUnknown} {
		t.Run(mode.String(), func(t *testing.T) {
			store := newMemStore("content", "file.txt")

			resp, err := In(testContext(), NewClient(store, "content"), t.TempDir(), inRequest("file.txt", mode, "file.txt", ""))
			require.NoError(t, err)
			assert.Equal(t, InResponse{}, resp)
			assert.Empty(t, store.downloads)
			assert.Equal(t, 0, store.lists)
		})
	}
}
