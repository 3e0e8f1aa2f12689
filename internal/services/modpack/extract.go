package modpack

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/cwmc/portable-launcher/internal/model"
)

// extractZip unpacks archivePath into dest. Entries resolving outside dest and
// non-regular entries such as symlinks are rejected.
func extractZip(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open archive: %v", model.ErrContentPackExtractionFailed, err)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("%w: create extract directory: %v", model.ErrFilesystemOperationFailed, err)
	}

	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("%w: create %s: %v", model.ErrContentPackExtractionFailed, f.Name, err)
			}
		case mode.IsRegular():
			if err := extractFile(f, target); err != nil {
				return fmt.Errorf("%w: extract %s: %v", model.ErrContentPackExtractionFailed, f.Name, err)
			}
		default:
			return fmt.Errorf("%w: unsupported entry %s (%s)", model.ErrContentPackExtractionFailed, f.Name, mode.Type())
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	perm := f.Mode().Perm() | 0o600
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// safeJoin joins an archive entry name onto dest, refusing paths that escape dest
func safeJoin(dest, name string) (string, error) {
	clean := filepath.FromSlash(name)
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: absolute entry path %q", model.ErrContentPackExtractionFailed, name)
	}
	target := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry %q escapes the archive root", model.ErrContentPackExtractionFailed, name)
	}
	return target, nil
}

// findDataRoot locates the game data directory among the extracted top-level entries.
// Launcher exports put it in .minecraft next to metadata files; otherwise the
// archive must hold exactly one top-level directory.
func findDataRoot(extractDir string) (string, error) {
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return "", fmt.Errorf("%w: read extracted archive: %v", model.ErrContentPackExtractionFailed, err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if e.Name() == DataRootName {
			return filepath.Join(extractDir, e.Name()), nil
		}
		dirs = append(dirs, e.Name())
	}

	if len(dirs) != 1 {
		return "", fmt.Errorf("%w: expected one top-level data directory, found %d",
			model.ErrContentPackExtractionFailed, len(dirs))
	}
	return filepath.Join(extractDir, dirs[0]), nil
}

// mergeInto moves each immediate child of src into dst, replacing same-named entries.
// It returns the number of moved entries.
func mergeInto(src, dst string) (int, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("%w: read data root: %v", model.ErrContentPackExtractionFailed, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fmt.Errorf("%w: create instance: %v", model.ErrFilesystemOperationFailed, err)
	}

	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())

		if err := os.RemoveAll(to); err != nil {
			return 0, fmt.Errorf("%w: replace %s: %v", model.ErrContentPackExtractionFailed, to, err)
		}
		if err := move(from, to); err != nil {
			return 0, fmt.Errorf("%w: move %s: %v", model.ErrContentPackExtractionFailed, e.Name(), err)
		}
	}
	return len(entries), nil
}

// move renames src to dst, copying when the rename crosses filesystems
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyTree(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
