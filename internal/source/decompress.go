package source

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// Entry is one byte stream recovered from a (possibly nested) archive or
// compressed file: either the original file itself, or a member pulled out
// of a zip/tar/gzip/bzip2 container.
type Entry struct {
	// DisplayPath is the original path with a "::" separator per archive
	// member level, e.g. "logs.tar.gz::app/access.log"; a gzip or bzip2
	// layer around a single file drops its suffix instead ("f.gz" -> "f").
	DisplayPath string
	Data        []byte
	Depth       int
}

// Expand recursively decompresses path's raw bytes into flat Entry values,
// honoring zmax as the maximum nesting depth. A stream reached at depth
// zmax is returned as one Entry holding its bytes unexpanded, which
// bounds decompression recursion.
//
// Only the container formats the standard library ships are handled here
// (gzip, bzip2, zip, tar); more exotic formats (xz, zstd, lz4, brotli,
// 7-zip) are explicitly out of scope and pass through as opaque bytes.
func Expand(path string, raw []byte, depth, zmax int) ([]Entry, error) {
	if depth >= zmax {
		return []Entry{{DisplayPath: path, Data: raw, Depth: depth}}, nil
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gunzipped, err := gunzip(raw)
		if err != nil {
			return nil, fmt.Errorf("source: gunzip %s: %w", path, err)
		}
		return expandTar(path, gunzipped, depth+1, zmax)

	case strings.HasSuffix(lower, ".gz"):
		gunzipped, err := gunzip(raw)
		if err != nil {
			return nil, fmt.Errorf("source: gunzip %s: %w", path, err)
		}
		inner := strings.TrimSuffix(path, ".gz")
		return Expand(inner, gunzipped, depth+1, zmax)

	case strings.HasSuffix(lower, ".bz2"):
		data, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return nil, fmt.Errorf("source: bunzip2 %s: %w", path, err)
		}
		inner := strings.TrimSuffix(path, ".bz2")
		return Expand(inner, data, depth+1, zmax)

	case strings.HasSuffix(lower, ".zip"):
		return expandZip(path, raw, depth+1, zmax)

	case strings.HasSuffix(lower, ".tar"):
		return expandTar(path, raw, depth+1, zmax)

	default:
		return []Entry{{DisplayPath: path, Data: raw, Depth: depth}}, nil
	}
}

func gunzip(raw []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func expandZip(path string, raw []byte, depth, zmax int) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("source: open zip %s: %w", path, err)
	}

	var entries []Entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("source: open zip member %s::%s: %w", path, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("source: read zip member %s::%s: %w", path, f.Name, err)
		}
		member := path + "::" + f.Name
		nested, err := Expand(member, data, depth, zmax)
		if err != nil {
			return nil, err
		}
		entries = append(entries, nested...)
	}
	return entries, nil
}

func expandTar(path string, raw []byte, depth, zmax int) ([]Entry, error) {
	tr := tar.NewReader(bytes.NewReader(raw))

	var entries []Entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: read tar %s: %w", path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("source: read tar member %s::%s: %w", path, hdr.Name, err)
		}
		member := path + "::" + hdr.Name
		nested, err := Expand(member, data, depth, zmax)
		if err != nil {
			return nil, err
		}
		entries = append(entries, nested...)
	}
	return entries, nil
}
