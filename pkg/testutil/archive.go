package testutil

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// WriteArchive packs files (name -> content) into path using format
// "zip", "tar.gz" or "tar.zst". Names ending in "/" become directories.
func WriteArchive(t *testing.T, path, format string, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	out, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, out.Close()) }()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	switch format {
	case "zip":
		zw := zip.NewWriter(out)
		for _, name := range names {
			w, err := zw.Create(name)
			require.NoError(t, err)
			_, err = io.WriteString(w, files[name])
			require.NoError(t, err)
		}
		require.NoError(t, zw.Close())
	case "tar.gz":
		gz := gzip.NewWriter(out)
		writeTar(t, gz, names, files)
		require.NoError(t, gz.Close())
	case "tar.zst":
		zw, err := zstd.NewWriter(out)
		require.NoError(t, err)
		writeTar(t, zw, names, files)
		require.NoError(t, zw.Close())
	default:
		t.Fatalf("unsupported test archive format %q", format)
	}
	return path
}

func writeTar(t *testing.T, w io.Writer, names []string, files map[string]string) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, name := range names {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(files[name])), Typeflag: tar.TypeReg}
		if name[len(name)-1] == '/' {
			hdr = &tar.Header{Name: name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := io.WriteString(tw, files[name])
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
}
