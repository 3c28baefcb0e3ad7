// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// The resolver turns a request path into the component file to load, the
// component's name and the method to call on it. A single path is ambiguous:
// its last segment may be a method, a component or a folder. Candidates are
// tried from the most explicit reading to the most conventional one and the
// first existing file wins.

package web

import (
	"fmt"
	"path"
	"strings"
)

const DefaultSeparator = "."

// Resolution is the outcome of a successful search. The zero value means no
// candidate file exists.
type Resolution struct {
	File      string
	Component string
	Method    string
}

func (r Resolution) Found() bool {
	return r.File != ""
}

// Candidate is one reading of a request path: a file that may hold the
// component and the method to call if it does.
type Candidate struct {
	File   string
	Method string
}

// Resolver searches Root for component files. An empty DefaultComponent or
// DefaultMethod means there is no default.
type Resolver struct {
	FS               FileSystem
	Root             string
	Extension        string
	DefaultComponent string
	DefaultMethod    string
	// Replaces "/" in component names, DefaultSeparator when empty
	Separator string
}

// Resolve searches root on the local disk (or through afs for URL roots).
func Resolve(requestPath, root, ext, defaultComponent, defaultMethod string) (Resolution, error) {
	r := &Resolver{
		Root:             root,
		Extension:        ext,
		DefaultComponent: defaultComponent,
		DefaultMethod:    defaultMethod,
	}
	return r.Resolve(requestPath)
}

func (r *Resolver) Resolve(requestPath string) (Resolution, error) {
	fs, root := r.fileSystem()
	if !fs.IsDir(root) {
		return Resolution{}, fmt.Errorf("%w: specified path doesn't exist: %s", ErrInvalidConfiguration, r.Root)
	}
	candidates, err := r.candidates(root, requestPath)
	if err != nil {
		return Resolution{}, err
	}
	for _, candidate := range candidates {
		rel, ok := relative(root, candidate.File)
		if !ok {
			continue
		}
		file := root + "/" + rel
		if !fs.IsFile(file) {
			continue
		}
		return Resolution{
			File:      file,
			Component: r.componentName(rel),
			Method:    candidate.Method,
		}, nil
	}
	return Resolution{}, nil
}

// Candidates lists, in priority order, the files Resolve would look for.
func (r *Resolver) Candidates(requestPath string) ([]Candidate, error) {
	_, root := r.fileSystem()
	return r.candidates(root, requestPath)
}

func (r *Resolver) fileSystem() (FileSystem, string) {
	root := strings.TrimRight(r.Root, `/\`)
	if root == "" && r.Root != "" {
		root = "/"
	}
	fs := r.FS
	if fs == nil {
		fs = NewFileSystem(root)
	}
	if fs == OSFileSystem {
		root = localPath(root)
	}
	return fs, root
}

func (r *Resolver) candidates(root, requestPath string) ([]Candidate, error) {
	request, method := splitRequest(requestPath)

	// "/Component" alone names a component, not a method
	if request == "" && method != "" {
		request = method
		method = r.DefaultMethod
	}

	if request == "" {
		if r.DefaultComponent == "" {
			return nil, fmt.Errorf("%w: no component requested", ErrBadRequest)
		}
		request = r.DefaultComponent
	}
	if method == "" {
		if r.DefaultMethod == "" {
			return nil, fmt.Errorf("%w: no method requested", ErrBadRequest)
		}
		method = r.DefaultMethod
	}

	base := root + "/" + request
	list := candidateList{}
	list.add(base+r.Extension, method)
	if r.DefaultMethod != "" {
		list.add(base+"/"+method+r.Extension, r.DefaultMethod)
	}
	if r.DefaultComponent != "" {
		list.add(base+"/"+r.DefaultComponent+r.Extension, method)
	}
	if r.DefaultMethod != "" && r.DefaultComponent != "" {
		list.add(base+"/"+method+"/"+r.DefaultComponent+r.Extension, r.DefaultMethod)
	}
	return list, nil
}

func (r *Resolver) componentName(rel string) string {
	separator := r.Separator
	if separator == "" {
		separator = DefaultSeparator
	}
	name := strings.TrimSuffix(rel, r.Extension)
	return strings.ReplaceAll(name, "/", separator)
}

// Split the trimmed path at its last "/" into the request and the method. A
// path without "/" is all method.
func splitRequest(requestPath string) (request, method string) {
	requestPath = strings.Trim(requestPath, "/")
	i := strings.LastIndexByte(requestPath, '/')
	if i < 0 {
		return "", requestPath
	}
	return strings.TrimRight(requestPath[:i], "/"), requestPath[i+1:]
}

// candidateList behaves as an ordered map: adding a file twice keeps its
// first position and takes the newer method.
type candidateList []Candidate

func (l *candidateList) add(file, method string) {
	for i := range *l {
		if (*l)[i].File == file {
			(*l)[i].Method = method
			return
		}
	}
	*l = append(*l, Candidate{File: file, Method: method})
}

// Path of file below root, cleaned. False when file is not strictly inside root.
func relative(root, file string) (string, bool) {
	if !strings.HasPrefix(file, root+"/") {
		return "", false
	}
	rel := path.Clean(file[len(root)+1:])
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return "", false
	}
	return rel, true
}
