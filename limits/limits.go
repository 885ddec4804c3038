/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package limits holds the per-connection bounds that the parser and state
// machine check before growing any buffer: header/URI/body sizes, chunk
// size, keep-alive count and the timeout classes.
package limits

import (
	"time"

	"github.com/go-playground/validator/v10"

	liberr "github.com/nabbar/golib/errors"
)

const (
	ErrorLimitsValidate liberr.CodeError = iota + liberr.MinPkgHttpServer + 100
)

func init() {
	liberr.RegisterIdFctMessage(ErrorLimitsValidate, message)
}

func message(code liberr.CodeError) string {
	switch code {
	case ErrorLimitsValidate:
		return "limits configuration is not valid"
	}
	return ""
}

// HttpLimits bounds a single connection's resource usage, snapshotted from
// the matched endpoint/host at Conn creation.
type HttpLimits struct {
	// HeaderSize is the maximum size in bytes of the request/status line plus
	// all headers before the terminating blank line.
	HeaderSize int64 `mapstructure:"header_size" json:"header_size" yaml:"header_size" toml:"header_size" validate:"gt=0"`

	// HeaderCount is the maximum number of header lines accepted.
	HeaderCount int `mapstructure:"header_count" json:"header_count" yaml:"header_count" toml:"header_count" validate:"gt=0"`

	// URISize is the maximum length of the request URI or response status message.
	URISize int64 `mapstructure:"uri_size" json:"uri_size" yaml:"uri_size" toml:"uri_size" validate:"gt=0"`

	// ReceiveBodySize is the maximum total size of an inbound request/response body.
	ReceiveBodySize int64 `mapstructure:"receive_body_size" json:"receive_body_size" yaml:"receive_body_size" toml:"receive_body_size" validate:"gt=0"`

	// ChunkSize bounds the size of a single outbound chunk when the engine is
	// itself the sender of chunked data (transmission side, not parsed here).
	ChunkSize int64 `mapstructure:"chunk_size" json:"chunk_size" yaml:"chunk_size" toml:"chunk_size" validate:"gte=0"`

	// TransmissionBodySize bounds outbound response bodies.
	TransmissionBodySize int64 `mapstructure:"transmission_body_size" json:"transmission_body_size" yaml:"transmission_body_size" toml:"transmission_body_size" validate:"gte=0"`

	// KeepAliveCount is the number of requests permitted on one connection
	// before it is forced closed. 0 or negative disables keep-alive.
	KeepAliveCount int `mapstructure:"keep_alive_count" json:"keep_alive_count" yaml:"keep_alive_count" toml:"keep_alive_count"`

	// InactivityTimeout bounds idle time between pipelined requests.
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout" json:"inactivity_timeout" yaml:"inactivity_timeout" toml:"inactivity_timeout"`

	// RequestTimeout bounds total time to fully receive and process one request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`

	// SessionTimeout bounds the lifetime of the whole TCP connection.
	SessionTimeout time.Duration `mapstructure:"session_timeout" json:"session_timeout" yaml:"session_timeout" toml:"session_timeout"`
}

// Default returns the engine's built-in limits, sized for the common case
// (8K headers, 1MB bodies).
func Default() HttpLimits {
	return HttpLimits{
		HeaderSize:           8 * 1024,
		HeaderCount:          64,
		URISize:              4 * 1024,
		ReceiveBodySize:      1 * 1024 * 1024,
		ChunkSize:            4096,
		TransmissionBodySize: 16 * 1024 * 1024,
		KeepAliveCount:       100,
		InactivityTimeout:    60 * time.Second,
		RequestTimeout:       60 * time.Second,
		SessionTimeout:       10 * time.Minute,
	}
}

// Validate checks the limits are self-consistent using go-playground/validator
// struct tags.
func (l HttpLimits) Validate() liberr.Error {
	val := validator.New()
	err := val.Struct(l)
	if err == nil {
		return nil
	}

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorLimitsValidate.Error(e)
	}

	out := ErrorLimitsValidate.Error(nil)
	for _, e := range err.(validator.ValidationErrors) {
		out.Add(fieldError(e))
	}
	return out
}

func fieldError(e validator.FieldError) error {
	return &fieldErr{field: e.Field(), tag: e.ActualTag()}
}

type fieldErr struct {
	field string
	tag   string
}

func (f *fieldErr) Error() string {
	return "limits field '" + f.field + "' violates constraint '" + f.tag + "'"
}
