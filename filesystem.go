// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"context"
	"os"
	"strings"

	"github.com/viant/afs"
)

// FileSystem answers the two existence questions the resolver asks.
type FileSystem interface {
	IsDir(location string) bool
	IsFile(location string) bool
}

type osFileSystem struct{}

// OSFileSystem checks locations on the local disk.
var OSFileSystem FileSystem = osFileSystem{}

func (osFileSystem) IsDir(dir string) bool {
	d, e := os.Stat(dir)
	switch {
	case e != nil:
		return false
	case !d.IsDir():
		return false
	}

	return true
}

func (osFileSystem) IsFile(file string) bool {
	info, err := os.Stat(file)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// AFSFileSystem checks locations through an afs service, which lets the
// search root live in memory or on any storage afs has a scheme for.
type AFSFileSystem struct {
	fs afs.Service
}

func NewAFSFileSystem(fs afs.Service) *AFSFileSystem {
	if fs == nil {
		fs = afs.New()
	}
	return &AFSFileSystem{fs: fs}
}

func (f *AFSFileSystem) IsDir(location string) bool {
	object, err := f.fs.Object(context.Background(), location)
	if err != nil || object == nil {
		return false
	}
	return object.IsDir()
}

func (f *AFSFileSystem) IsFile(location string) bool {
	object, err := f.fs.Object(context.Background(), location)
	if err != nil || object == nil {
		return false
	}
	return !object.IsDir()
}

// NewFileSystem picks the local disk for plain paths and file:// URLs, afs
// for every other scheme.
func NewFileSystem(root string) FileSystem {
	if i := strings.Index(root, "://"); i > 0 && root[:i] != "file" {
		return NewAFSFileSystem(nil)
	}
	return OSFileSystem
}

func localPath(root string) string {
	return strings.TrimPrefix(root, "file://")
}
