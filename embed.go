// Package vcfview provides the embedded sample address books and an overlay
// filesystem that checks a local directory first, falling back to embedded.
package vcfview

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

//go:embed samples/*.vcf
var rawSamples embed.FS

// Samples is the embedded samples filesystem with the "samples/" prefix stripped.
var Samples = mustSub(rawSamples, "samples")

// SampleExt is the file extension of sample address books.
const SampleExt = ".vcf"

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// SampleNames lists the address books in fsys by name, without extension, sorted.
func SampleNames(fsys fs.FS) ([]string, error) {
	matches, err := fs.Glob(fsys, "*"+SampleExt)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(m, SampleExt)
	}
	slices.Sort(names)
	return names, nil
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(path.Join(o.localDir, name))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}

// ReadDir merges the local and embedded listings. Local entries win on name clashes.
func (o overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	embedded, embErr := fs.ReadDir(o.embedded, name)
	local, locErr := os.ReadDir(path.Join(o.localDir, name))
	if embErr != nil && locErr != nil {
		return nil, embErr
	}
	seen := make(map[string]bool, len(local))
	entries := make([]fs.DirEntry, 0, len(local)+len(embedded))
	for _, e := range local {
		seen[e.Name()] = true
		entries = append(entries, e)
	}
	for _, e := range embedded {
		if !seen[e.Name()] {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}
