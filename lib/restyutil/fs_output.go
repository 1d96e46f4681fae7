package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Output receives one rendered exchange per completed request.
type Output interface {
	Write(id string, contents string)
}

// FilesystemOutput writes each exchange to its own file, wiping the
// directory on construction so a dump only ever covers one run.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	os.RemoveAll(dir)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		panic(err)
	}
	return FilesystemOutput{directory: dir}
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".http.txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write exchange dump", "id", id, "err", err)
	}
}
