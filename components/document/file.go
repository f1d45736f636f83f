package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// File is a document on the local filesystem. Read, ReadAt and Close go to the open file.
type File struct {
	*os.File
	info os.FileInfo
	Content
}

var _ Source = (*File)(nil)

func NewFile(fname string) (*File, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	info, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if info.IsDir() {
		fp.Close()
		return nil, fmt.Errorf("%s is a directory", fname)
	}
	return &File{
		File: fp,
		info: info,
		Content: Content{
			meta: map[string]string{
				MetaSource: filepath.ToSlash(fname),
				"filename": info.Name(),
				"modtime":  info.ModTime().UTC().Format(time.RFC3339),
				"size":     strconv.FormatInt(info.Size(), 10),
			},
		},
	}, nil
}

// Name returns the base name of the file
func (d *File) Name() string {
	return d.info.Name()
}

// Size is the size at open time
func (d *File) Size() int64 {
	return d.info.Size()
}
