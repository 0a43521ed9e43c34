// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package materialize writes a generated project tree to disk and
// optionally publishes it as a zip archive.
//
// Every file path is checked before anything is written: a tree with one
// unsafe path writes nothing. Writing itself is not transactional; an I/O
// error partway through leaves earlier files in place.
package materialize

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DefaultSlug names projects whose name has no usable characters.
const DefaultSlug = "nextjs_project"

// Publish defaults, relative to the working directory.
const (
	DefaultPublishDir    = "public/zip_folder"
	DefaultPublishPrefix = "/zip_folder"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases name, collapses every run of characters outside [a-z0-9]
// into a single underscore and trims underscores from both ends. An empty
// result becomes DefaultSlug. Slug(Slug(x)) == Slug(x).
func Slug(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return DefaultSlug
	}
	return s
}

// UnsafePathError reports a file path that would land outside the target
// directory.
type UnsafePathError struct {
	Path   string
	Reason string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("unsafe path %q: %s", e.Path, e.Reason)
}

// CleanPath normalizes a relative file path: one leading "./" is removed and
// the result is cleaned with slash semantics. It rejects absolute paths,
// paths that escape their root and paths naming the root itself.
func CleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", &UnsafePathError{Path: p, Reason: "empty path"}
	}
	slashed := strings.ReplaceAll(p, `\`, "/")
	if path.IsAbs(slashed) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", &UnsafePathError{Path: p, Reason: "absolute path"}
	}
	cleaned := path.Clean(strings.TrimPrefix(slashed, "./"))
	switch {
	case cleaned == ".":
		return "", &UnsafePathError{Path: p, Reason: "names the target directory"}
	case cleaned == ".." || strings.HasPrefix(cleaned, "../"):
		return "", &UnsafePathError{Path: p, Reason: "escapes the target directory"}
	}
	return cleaned, nil
}

// Write writes files under targetDir. All paths are validated first; the
// files are then written in sorted path order, creating parent directories
// and overwriting existing files.
func Write(files map[string]string, targetDir string) error {
	cleaned := make(map[string]string, len(files))
	for p := range files {
		c, err := CleanPath(p)
		if err != nil {
			return err
		}
		if prev, dup := cleaned[c]; dup {
			return &UnsafePathError{Path: p, Reason: fmt.Sprintf("same file as %q", prev)}
		}
		cleaned[c] = p
	}

	paths := make([]string, 0, len(cleaned))
	for c := range cleaned {
		paths = append(paths, c)
	}
	sort.Strings(paths)

	for _, c := range paths {
		dest := filepath.Join(targetDir, filepath.FromSlash(c))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", c, err)
		}
		if err := os.WriteFile(dest, []byte(files[cleaned[c]]), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", c, err)
		}
	}
	return nil
}

// ProjectDir returns the absolute path of outputDir/Slug(projectName)
// without creating it.
func ProjectDir(outputDir, projectName string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	dir, err := filepath.Abs(filepath.Join(outputDir, Slug(projectName)))
	if err != nil {
		return "", fmt.Errorf("resolving project directory: %w", err)
	}
	return dir, nil
}

// Prepare creates outputDir/Slug(projectName) and returns its absolute path.
// It succeeds when the directory already exists.
func Prepare(outputDir, projectName string) (string, error) {
	dir, err := ProjectDir(outputDir, projectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating project directory: %w", err)
	}
	return dir, nil
}

// CheckPublishDir rejects a project directory that is, or contains, the
// publish directory. Such a project could overwrite published archives and
// its own archive would include them.
func CheckPublishDir(projectDir, publishDir string) error {
	if publishDir == "" {
		publishDir = DefaultPublishDir
	}
	proj, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("resolving project directory: %w", err)
	}
	pub, err := filepath.Abs(publishDir)
	if err != nil {
		return fmt.Errorf("resolving publish directory: %w", err)
	}
	if within(proj, pub) {
		return &UnsafePathError{Path: projectDir, Reason: "contains the publish directory " + publishDir}
	}
	return nil
}

// within reports whether p is dir or lies below it. Both must be absolute.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Archive describes a published zip file.
type Archive struct {
	// Path is the archive's location on disk.
	Path string `json:"path"`
	// ClientPath is the path clients fetch the archive from.
	ClientPath string `json:"client_path"`
}

// ArchiveDir zips every regular file under projectDir into
// publishDir/slug.zip, replacing any earlier archive of the same name.
// Entries are named relative to projectDir with forward slashes. The
// publish directory is never archived, even when it lies inside projectDir.
func ArchiveDir(projectDir, publishDir, prefix, slug string) (Archive, error) {
	if publishDir == "" {
		publishDir = DefaultPublishDir
	}
	if prefix == "" {
		prefix = DefaultPublishPrefix
	}
	if err := os.MkdirAll(publishDir, 0o755); err != nil {
		return Archive{}, fmt.Errorf("creating publish directory: %w", err)
	}
	absPublish, err := filepath.Abs(publishDir)
	if err != nil {
		return Archive{}, fmt.Errorf("resolving publish directory: %w", err)
	}

	name := slug + ".zip"
	dest := filepath.Join(publishDir, name)

	tmpFile, err := os.CreateTemp(publishDir, ".archive-*.tmp")
	if err != nil {
		return Archive{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	zipErr := writeZip(tmpFile, projectDir, absPublish)
	closeErr := tmpFile.Close()
	if zipErr != nil {
		os.Remove(tmpPath)
		return Archive{}, fmt.Errorf("zipping %s: %w", projectDir, zipErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return Archive{}, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return Archive{}, fmt.Errorf("renaming temp file: %w", err)
	}

	return Archive{
		Path:       dest,
		ClientPath: strings.TrimSuffix(prefix, "/") + "/" + name,
	}, nil
}

// writeZip archives the regular files under root, skipping the subtree at
// the absolute path exclude.
func writeZip(w io.Writer, root, exclude string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	err = filepath.WalkDir(absRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == exclude {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		entry, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
