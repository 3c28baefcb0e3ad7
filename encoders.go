// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"mime"
	"sync"

	"gopkg.in/yaml.v3"
)

// MimeEncoder serializes a value a component returned for one content type.
type MimeEncoder func(any) ([]byte, error)

var encoders = struct {
	sync.RWMutex
	byType map[string]MimeEncoder
}{byType: map[string]MimeEncoder{
	"application/json": JSONencoder,
	"application/xml":  XMLencoder,
	"text/xml":         XMLencoder,
	"application/yaml": YAMLencoder,
	"text/yaml":        YAMLencoder,
}}

// Register how values are written when the response has this mimetype.
func RegisterMimeEncoder(mimetype string, enc MimeEncoder) {
	encoders.Lock()
	defer encoders.Unlock()
	encoders.byType[mimetype] = enc
}

func lookupEncoder(ctype string) (MimeEncoder, bool) {
	mimetype, _, err := mime.ParseMediaType(ctype)
	if err != nil {
		return nil, false
	}
	encoders.RLock()
	defer encoders.RUnlock()
	enc, ok := encoders.byType[mimetype]
	return enc, ok
}

func JSONencoder(content any) ([]byte, error) {
	var encoded bytes.Buffer
	if err := json.NewEncoder(&encoded).Encode(content); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func XMLencoder(content any) ([]byte, error) {
	var encoded bytes.Buffer
	if err := xml.NewEncoder(&encoded).Encode(content); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func YAMLencoder(content any) ([]byte, error) {
	return yaml.Marshal(content)
}
