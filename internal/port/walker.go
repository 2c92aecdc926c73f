package port

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}

// FileStore reads a source file and writes it back in one step.
type FileStore interface {
	FileReader
	WriteFile(path, content string) error
}
