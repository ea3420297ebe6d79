package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrEmptyArchive is returned when an archive holds no files.
var ErrEmptyArchive = errors.New("archive contains no files")

// LoadFile loads the given program image, decompressing it if the
// extension names a supported container. Archives yield their first
// regular file.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var decoder io.ReadCloser
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		decoder, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		var r *zip.Reader
		if r, err = zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
			break
		}
		for _, f := range r.File {
			if !f.FileInfo().IsDir() {
				decoder, err = f.Open()
				break
			}
		}
		if decoder == nil && err == nil {
			err = ErrEmptyArchive
		}
	case ".7z":
		var r *sevenzip.Reader
		if r, err = sevenzip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
			break
		}
		for _, f := range r.File {
			if !f.FileInfo().IsDir() {
				decoder, err = f.Open()
				break
			}
		}
		if decoder == nil && err == nil {
			err = ErrEmptyArchive
		}
	default:
		// return the data as is
		return data, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	defer decoder.Close()

	// read the decompressed data into a byte slice
	if data, err = io.ReadAll(decoder); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}
