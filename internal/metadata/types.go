// Package metadata is the client of the external metadata extraction API.
package metadata

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Errors returned by Client.Fetch.
var (
	ErrInvalidURL = errors.New("metadata: invalid url")
	ErrUpstream   = errors.New("metadata: upstream error")
)

// Data is the normalized metadata of one URL: title, description, image,
// logo and so on. Absent fields are nil.
type Data map[string]any

// Has reports whether field is present and not null.
func (d Data) Has(field string) bool {
	v, ok := d[field]
	return ok && v != nil
}

// String returns a string field or "".
func (d Data) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// URLOf returns the url of a media field such as image or logo.
func (d Data) URLOf(field string) string {
	m, ok := d[field].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["url"].(string)
	return s
}

// Response is the API envelope.
type Response struct {
	Status  string `json:"status" msgpack:"status"`
	Data    Data   `json:"data,omitempty" msgpack:"data"`
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
}

// Options are the extraction flags sent with a request.
type Options struct {
	Palette bool
	Audio   bool
	Video   bool
	Iframe  bool
}

// DemoOptions are the flags used by the live demo.
var DemoOptions = Options{Palette: true, Audio: true, Video: true, Iframe: true}

func (o Options) values(target string) url.Values {
	v := url.Values{}
	v.Set("url", target)
	set := func(key string, on bool) {
		if on {
			v.Set(key, strconv.FormatBool(on))
		}
	}
	set("palette", o.Palette)
	set("audio", o.Audio)
	set("video", o.Video)
	set("iframe", o.Iframe)
	return v
}

// StatusError is a non successful API answer.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("metadata: %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("metadata: %d %s", e.Code, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}
