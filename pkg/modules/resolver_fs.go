package modules

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/quill-lang/quill/pkg/source"
)

// SourceResolver locates and reads the local modules a program imports.
type SourceResolver interface {
	// Name returns a human-readable name for this resolver
	Name() string

	// Resolve maps an import specifier, as written in the module at
	// fromPath, to the path of a source file.
	Resolve(specifier, fromPath string) (string, error)

	// ReadSource loads the file at a path returned by Resolve.
	ReadSource(path string) (*source.SourceFile, error)
}

// FileSystemResolver resolves modules from a file system
type FileSystemResolver struct {
	name string
	fs   fs.FS

	// Configuration
	extensions []string // extensions tried after the bare path
	indexFiles []string // files tried when the path is a directory
}

// NewFileSystemResolver creates a resolver over filesystem. Paths are
// slash-separated and relative to its root.
func NewFileSystemResolver(filesystem fs.FS) *FileSystemResolver {
	return &FileSystemResolver{
		name:       "FileSystem",
		fs:         filesystem,
		extensions: []string{source.Extension},
		indexFiles: []string{"__init__" + source.Extension, "index" + source.Extension},
	}
}

// NewOSFileSystemResolver creates a resolver rooted at baseDir on disk.
func NewOSFileSystemResolver(baseDir string) *FileSystemResolver {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		abs = baseDir
	}
	r := NewFileSystemResolver(os.DirFS(abs))
	r.name = "OSFileSystem"
	return r
}

// Name returns the resolver name
func (r *FileSystemResolver) Name() string {
	return r.name
}

// Resolve finds the file a relative specifier names.
func (r *FileSystemResolver) Resolve(specifier, fromPath string) (string, error) {
	target, err := targetPath(specifier, fromPath)
	if err != nil {
		return "", err
	}
	return r.tryResolve(target)
}

// ReadSource reads the file at p.
func (r *FileSystemResolver) ReadSource(p string) (*source.SourceFile, error) {
	data, err := fs.ReadFile(r.fs, p)
	if err != nil {
		return nil, err
	}
	return source.FromFile(p, string(data)), nil
}

// targetPath joins a specifier onto the directory of fromPath. Both
// Python-style dotted paths (.pkg.mod) and file paths (./pkg/mod.ql) are
// accepted; bare package names are not local.
func targetPath(specifier, fromPath string) (string, error) {
	if !IsLocal(specifier) {
		return "", fmt.Errorf("%s is not a local module", specifier)
	}
	rel := specifier
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") && !strings.HasPrefix(specifier, "/") {
		rel = strings.TrimSuffix(Specifier(specifier), ".js")
		rel = strings.TrimSuffix(rel, "/index")
	}
	if strings.HasPrefix(rel, "/") {
		return path.Clean(strings.TrimPrefix(rel, "/")), nil
	}
	return path.Join(path.Dir(filepath.ToSlash(fromPath)), rel), nil
}

// tryResolve attempts the exact path, then each extension, then index files.
func (r *FileSystemResolver) tryResolve(target string) (string, error) {
	if strings.HasPrefix(target, "../") || target == ".." {
		return "", fmt.Errorf("module %s is outside the project root", target)
	}
	if strings.HasSuffix(target, ".js") {
		target = strings.TrimSuffix(target, ".js")
	}
	if path.Ext(target) != "" && r.isFile(target) {
		return target, nil
	}
	for _, ext := range r.extensions {
		if r.isFile(target + ext) {
			return target + ext, nil
		}
	}
	for _, index := range r.indexFiles {
		p := path.Join(target, index)
		if r.isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("module not found: %s", target)
}

// isFile checks if a path exists and is a file (not a directory)
func (r *FileSystemResolver) isFile(p string) bool {
	info, err := fs.Stat(r.fs, p)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
