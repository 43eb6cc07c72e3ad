package export

import (
	"os"
	"path/filepath"
)

// Saver offers a serialized blob to the user as a named download.
type Saver interface {
	Save(name, mimeType string, data []byte) error
}

// FileSaver writes downloads into a directory.
type FileSaver struct {
	Dir string
}

func (s FileSaver) Save(name, _ string, data []byte) error {
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}
