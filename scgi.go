// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cgi"
	"strconv"
	"strings"
)

// largest header netstring accepted
const maxScgiHeader = 1 << 20

// Answers one SCGI request in HTTP/1.1 form.
type scgiConn struct {
	fd          io.Writer
	header      http.Header
	buf         bytes.Buffer
	status      int
	wroteHeader bool
	head        bool
}

func (conn *scgiConn) Header() http.Header {
	return conn.header
}

func (conn *scgiConn) WriteHeader(status int) {
	if conn.wroteHeader {
		return
	}
	conn.wroteHeader = true
	conn.status = status
}

func (conn *scgiConn) Write(data []byte) (int, error) {
	if !conn.wroteHeader {
		conn.WriteHeader(http.StatusOK)
	}
	if conn.head {
		return len(data), nil
	}
	return conn.buf.Write(data)
}

// Send the status line, the headers and the buffered body.
func (conn *scgiConn) flush() error {
	if !conn.wroteHeader {
		conn.WriteHeader(http.StatusOK)
	}
	if conn.header.Get("Content-Length") == "" && !conn.head {
		conn.header.Set("Content-Length", strconv.Itoa(conn.buf.Len()))
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "HTTP/1.1 %d %s\r\n", conn.status, http.StatusText(conn.status))
	if err := conn.header.Write(&out); err != nil {
		return err
	}
	out.WriteString("\r\n")
	out.Write(conn.buf.Bytes())
	_, err := conn.fd.Write(out.Bytes())
	return err
}

// Parse the netstring of NUL separated header pairs and the body following
// it into an http.Request.
func readScgiRequest(r *bufio.Reader) (*http.Request, error) {
	prefix, err := r.ReadString(':')
	if err != nil {
		return nil, err
	}
	length, err := strconv.Atoi(strings.TrimSuffix(prefix, ":"))
	if err != nil || length < 0 || length > maxScgiHeader {
		return nil, fmt.Errorf("scgi: invalid netstring length %q", prefix)
	}
	content := make([]byte, length+1)
	if _, err = io.ReadFull(r, content); err != nil {
		return nil, err
	}
	if content[length] != ',' {
		return nil, errors.New("scgi: netstring not terminated")
	}
	fields := bytes.Split(content[:length], []byte{0})
	params := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		params[string(fields[i])] = string(fields[i+1])
	}
	req, err := cgi.RequestFromMap(params)
	if err != nil {
		return nil, err
	}
	if req.ContentLength > 0 {
		req.Body = io.NopCloser(io.LimitReader(r, req.ContentLength))
	} else {
		req.Body = http.NoBody
	}
	return req, nil
}

func (s *Server) handleScgiRequest(fd io.ReadWriteCloser) {
	defer fd.Close()
	req, err := readScgiRequest(bufio.NewReader(fd))
	if err != nil {
		s.Logger.WithError(err).Warn("invalid scgi request")
		return
	}
	conn := &scgiConn{fd: fd, header: http.Header{}, head: req.Method == http.MethodHead}
	s.ServeHTTP(conn, req)
	if err = conn.flush(); err != nil {
		s.Logger.WithError(err).Debug("scgi write")
	}
}

// Runs the web application and serves scgi requests for this Server object.
func (s *Server) RunScgi(addr string) error {
	l, err := s.listen(addr)
	if err != nil {
		return err
	}
	defer l.Close()
	s.Logger.Info("web.go serving scgi ", l.Addr())
	for {
		fd, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleScgiRequest(fd)
	}
}
