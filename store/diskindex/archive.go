package diskindex

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// PartialsArchiveName is the zstd-compressed tar archive partials are
// written to when FinalizePartials is called with retain set (the
// build's Options.RetainPartials), instead of deleting them outright.
const PartialsArchiveName = "partials.tar.zst"

// FinalizePartials disposes of partial files after a successful
// merge: unlink them (the default), or archive them compressed when
// retain is true. Archival happens strictly after the merge has fully
// drained every partial, so it cannot affect the merge's output.
func FinalizePartials(workDir string, partialPaths []string, retain bool) error {
	if !retain {
		for _, p := range partialPaths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return &IOError{Op: "remove partial", Err: err}
			}
		}
		return nil
	}

	archivePath := filepath.Join(workDir, PartialsArchiveName)
	f, err := os.Create(archivePath)
	if err != nil {
		return &IOError{Op: "create partials archive", Err: err}
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return &IOError{Op: "init zstd writer", Err: err}
	}
	tw := tar.NewWriter(zw)

	for _, p := range partialPaths {
		if err := addToTar(tw, p); err != nil {
			tw.Close()
			zw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return &IOError{Op: "close tar writer", Err: err}
	}
	if err := zw.Close(); err != nil {
		return &IOError{Op: "close zstd writer", Err: err}
	}

	for _, p := range partialPaths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return &IOError{Op: "remove archived partial", Err: err}
		}
	}
	return nil
}

func addToTar(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Op: "open partial for archive", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &IOError{Op: "stat partial for archive", Err: err}
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return &IOError{Op: "tar header", Err: err}
	}
	hdr.Name = filepath.Base(path)

	if err := tw.WriteHeader(hdr); err != nil {
		return &IOError{Op: "write tar header", Err: err}
	}
	if _, err := io.Copy(tw, f); err != nil {
		return &IOError{Op: "write tar body", Err: err}
	}
	return nil
}
