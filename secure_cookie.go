// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 64000
	keySize          = 32
)

var (
	ErrMissingCookieSecret = errors.New("secret key for secure cookies has not been set, assign one to Config.CookieSecret")
	ErrInvalidCookie       = errors.New("invalid secure cookie")
)

// SetSecureCookie stores val encrypted and signed with keys derived from
// Config.CookieSecret.
func (ctx *Context) SetSecureCookie(name string, val string, age int64) error {
	server := ctx.Server
	if len(server.encKey) == 0 || len(server.signKey) == 0 {
		return ErrMissingCookieSecret
	}
	ciphertext, err := encrypt([]byte(val), server.encKey)
	if err != nil {
		return err
	}
	sig := sign(ciphertext, server.signKey)
	data := base64.StdEncoding.EncodeToString(ciphertext) + "|" + base64.StdEncoding.EncodeToString(sig)
	ctx.SetCookie(NewCookie(name, data, age))
	return nil
}

// GetSecureCookie returns the value SetSecureCookie stored under name. false
// when the cookie is missing or fails verification.
func (ctx *Context) GetSecureCookie(name string) (string, bool) {
	cookie, err := ctx.Request.Cookie(name)
	if err != nil || len(ctx.Server.signKey) == 0 {
		return "", false
	}
	plaintext, err := decodeSecureValue(cookie.Value, ctx.Server.encKey, ctx.Server.signKey)
	if err != nil {
		ctx.Logger.WithError(err).WithField("cookie", name).Debug("rejected secure cookie")
		return "", false
	}
	return string(plaintext), true
}

func decodeSecureValue(value string, encKey, signKey []byte) ([]byte, error) {
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCookie
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidCookie
	}
	sig, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidCookie
	}
	if !hmac.Equal(sign(ciphertext, signKey), sig) {
		return nil, ErrInvalidCookie
	}
	return decrypt(ciphertext, encKey)
}

func genKey(password string, salt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, keySize, sha512.New)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	aesCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	ciphertext := make([]byte, aes.BlockSize+len(plaintext))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	stream := cipher.NewCTR(aesCipher, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], plaintext)
	return ciphertext, nil
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	if len(ciphertext) < aes.BlockSize {
		return nil, ErrInvalidCookie
	}
	aesCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCTR(aesCipher, ciphertext[:aes.BlockSize])
	stream.XORKeyStream(plaintext, ciphertext[aes.BlockSize:])
	return plaintext, nil
}

func sign(data []byte, key []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
