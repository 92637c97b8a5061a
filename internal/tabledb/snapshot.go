package tabledb

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
)

// ExportSnapshot tars and gzips the SoloDB data directory at dataDir into a
// single archive at destPath. This is an admin/CLI-only operation: it is
// deliberately not reachable from a route script, since persistence backup
// sits outside the scripting language's side-effect surface.
func ExportSnapshot(ctx context.Context, dataDir, destPath string) error {
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{dataDir: ""})
	if err != nil {
		return err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	return format.Archive(ctx, out, files)
}

// ImportSnapshot extracts a tar.gz archive previously produced by
// ExportSnapshot into destDir, restoring the SoloDB data directory it holds.
func ImportSnapshot(ctx context.Context, archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer archiveFile.Close()

	format, reader, err := archives.Identify(ctx, archivePath, archiveFile)
	if err != nil {
		return err
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return os.ErrInvalid
	}
	return extractor.Extract(ctx, reader, func(ctx context.Context, f archives.FileInfo) error {
		outPath := filepath.Join(destDir, f.NameInArchive)
		if f.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode())
		if err != nil {
			return err
		}
		defer dst.Close()
		_, err = io.Copy(dst, src)
		return err
	})
}
