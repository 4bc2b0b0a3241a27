package utils

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestUtils_DownloadImage(t *testing.T) {
	pngData := encodePNG(t)

	tests := []struct {
		name    string
		body    []byte
		status  int
		wantErr bool
	}{
		{
			name:   "image",
			body:   pngData,
			status: http.StatusOK,
		},
		{
			name:    "not an image",
			body:    []byte("plain text content"),
			status:  http.StatusOK,
			wantErr: true,
		},
		{
			name:    "not found",
			body:    []byte("not found"),
			status:  http.StatusNotFound,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, err := w.Write(tc.body)
				assert.NoError(t, err)
			}))
			defer srv.Close()

			f, err := DownloadImage(context.Background(), srv.URL+"/sample.png")
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer os.Remove(f.Name())
			defer f.Close()

			assert.Equal(t, os.TempDir(), filepath.Dir(f.Name()))
			assert.True(t, strings.HasSuffix(f.Name(), ".png"))

			stat, err := f.Stat()
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.body)), stat.Size())
		})
	}
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://github.com/esimov/boxscale/"))
	assert.False(t, IsValidUrl("testdata/sample.jpg"))
	assert.False(t, IsValidUrl("-"))
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t), 0644))

	ftype, err := DetectContentType(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ftype)

	_, err = DetectContentType(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
