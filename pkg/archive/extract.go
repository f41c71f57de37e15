// pkg/archive/extract.go
//
// Archive extraction into a staging directory followed by a move into the
// target, so a crash never leaves a half-written file under its final name.

package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/telemetry"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const stagingPattern = ".bridgeconf-staging-*"

// digestArchive is replaced in tests.
var digestArchive = DigestFile

// Summary describes a completed extraction.
type Summary struct {
	Archive string
	Files   int
	Dirs    int
	// Links counts symbolic and hard links recreated inside the target.
	Links int
	// Skipped counts entries that are not files, directories or links
	// (devices, fifos). Each one is logged as a warning.
	Skipped int
	Digest  Digest
}

// Extract unpacks src into dest, overwriting existing files. Entries are
// first written to a staging directory inside dest and then renamed into
// place; the staging directory is always removed. Links must resolve inside
// the archive tree.
func Extract(ctx context.Context, src, dest string, format Format) (*Summary, error) {
	ctx, span := telemetry.Start(ctx, "archive.Extract",
		attribute.String("archive", src),
		attribute.String("format", format.String()))
	defer span.End()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory %s: %w", dest, err)
	}

	staging, err := os.MkdirTemp(dest, stagingPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory in %s: %w", dest, err)
	}
	defer os.RemoveAll(staging)

	x := &extractor{ctx: ctx, staging: staging, summary: &Summary{Archive: src}}
	summary := x.summary

	switch format {
	case FormatZip:
		err = x.fromZip(src)
	case FormatTarGz, FormatTarZst:
		err = x.fromTar(src, format)
	default:
		err = fmt.Errorf("unknown archive format: %q", format)
	}
	if err == nil {
		err = checkLinks(staging)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// nothing reaches dest unless the digest for the marker is known
	summary.Digest, err = digestArchive(src)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := promote(staging, dest); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("files", summary.Files),
		attribute.String("digest", summary.Digest.String()))
	return summary, nil
}

// maxLinkTarget bounds the body of a zip symlink entry.
const maxLinkTarget = 4096

type extractor struct {
	ctx     context.Context
	staging string
	summary *Summary
}

// entryPath maps an archive name into staging for writing. A later entry
// replaces an earlier link of the same name.
func (x *extractor) entryPath(name string) (string, error) {
	target, err := x.resolve(name)
	if err != nil {
		return "", err
	}
	return target, unlinkSymlink(target)
}

// resolve maps an archive name into staging. Names may not escape staging or
// pass through a link created by the archive.
func (x *extractor) resolve(name string) (string, error) {
	target, err := fileops.SecureJoin(x.staging, name)
	if err != nil {
		return "", fmt.Errorf("refusing archive entry %q: %w", name, err)
	}
	rel, err := filepath.Rel(x.staging, target)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return target, nil
	}

	dir := x.staging
	parts := strings.Split(rel, string(filepath.Separator))
	for _, part := range parts[:len(parts)-1] {
		dir = filepath.Join(dir, part)
		info, err := os.Lstat(dir)
		if err != nil {
			break
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return "", fmt.Errorf("refusing archive entry %q: parent %s is a link", name, part)
		}
	}
	return target, nil
}

func unlinkSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(path)
}

func (x *extractor) symlink(name, target, linkname string) error {
	if linkname == "" || filepath.IsAbs(linkname) || strings.HasPrefix(linkname, "/") {
		return fmt.Errorf("refusing link %q -> %q: target must be relative", name, linkname)
	}
	rel, err := filepath.Rel(x.staging, filepath.Dir(target))
	if err != nil {
		return err
	}
	if _, err := fileops.SecureJoin(x.staging, filepath.Join(rel, filepath.FromSlash(linkname))); err != nil {
		return fmt.Errorf("refusing link %q -> %q: %w", name, linkname, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	_ = os.Remove(target)
	if err := os.Symlink(filepath.FromSlash(linkname), target); err != nil {
		return fmt.Errorf("failed to create link %s: %w", name, err)
	}
	x.summary.Links++
	return nil
}

func (x *extractor) hardlink(name, target, linkname string) error {
	source, err := x.resolve(linkname)
	if err != nil {
		return err
	}
	info, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("link %q points at %q, which is not in the archive: %w", name, linkname, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("link %q points at %q, which is not a regular file", name, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	_ = os.Remove(target)
	if err := os.Link(source, target); err != nil {
		return fmt.Errorf("failed to create link %s: %w", name, err)
	}
	x.summary.Links++
	return nil
}

func (x *extractor) skip(name string, kind string) {
	otelzap.Ctx(x.ctx).Warn("Skipping unsupported archive entry",
		zap.String("entry", name),
		zap.String("type", kind))
	x.summary.Skipped++
}

func (x *extractor) fromZip(src string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open zip archive %s: %w", src, err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target, err := x.entryPath(entry.Name)
		if err != nil {
			return err
		}

		mode := entry.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			x.summary.Dirs++
		case mode.IsRegular():
			rc, err := entry.Open()
			if err != nil {
				return fmt.Errorf("failed to open archive entry %q: %w", entry.Name, err)
			}
			err = writeEntry(target, rc, mode)
			rc.Close()
			if err != nil {
				return err
			}
			x.summary.Files++
		case mode&fs.ModeSymlink != 0:
			rc, err := entry.Open()
			if err != nil {
				return fmt.Errorf("failed to open archive entry %q: %w", entry.Name, err)
			}
			linkname, err := io.ReadAll(io.LimitReader(rc, maxLinkTarget))
			rc.Close()
			if err != nil {
				return fmt.Errorf("failed to read link %q: %w", entry.Name, err)
			}
			if err := x.symlink(entry.Name, target, string(linkname)); err != nil {
				return err
			}
		default:
			x.skip(entry.Name, mode.Type().String())
		}
	}
	return nil
}

func (x *extractor) fromTar(src string, format Format) error {
	file, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", src, err)
	}
	defer file.Close()

	var stream io.Reader
	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to read gzip stream %s: %w", src, err)
		}
		defer gz.Close()
		stream = gz
	case FormatTarZst:
		zr, err := zstd.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to read zstd stream %s: %w", src, err)
		}
		defer zr.Close()
		stream = zr
	}

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry in %s: %w", src, err)
		}

		target, err := x.entryPath(hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			x.summary.Dirs++
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
			x.summary.Files++
		case tar.TypeSymlink:
			if err := x.symlink(hdr.Name, target, hdr.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			if err := x.hardlink(hdr.Name, target, hdr.Linkname); err != nil {
				return err
			}
		default:
			x.skip(hdr.Name, string(rune(hdr.Typeflag)))
		}
	}
}

func writeEntry(target string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0200)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return out.Close()
}

// checkLinks resolves every symlink in staging and rejects chains that leave
// it. Dangling links are refused too.
func checkLinks(staging string) error {
	root, err := filepath.EvalSymlinks(staging)
	if err != nil {
		return err
	}
	return filepath.WalkDir(staging, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		name, _ := filepath.Rel(staging, path)
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("refusing link %q: %w", filepath.ToSlash(name), err)
		}
		rel, err := filepath.Rel(root, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("refusing link %q: resolves outside the archive", filepath.ToSlash(name))
		}
		return nil
	})
}

// promote moves every file from staging into dest, mirroring the tree.
func promote(staging, dest string) error {
	return filepath.WalkDir(staging, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(staging, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}

		if info, err := os.Lstat(target); err == nil && info.IsDir() {
			return fmt.Errorf("cannot overwrite directory %s with a file", target)
		}
		if err := os.Rename(path, target); err != nil {
			return fmt.Errorf("failed to move %s into place: %w", strings.TrimPrefix(rel, "./"), err)
		}
		return nil
	})
}
