package jsonrequest

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// readBody reads the whole response body, undoing any Content-Encoding the
// standard transport left in place. Bodies net/http already decompressed have
// their Content-Encoding header removed and are read as is.
func readBody(resp *http.Response) ([]byte, error) {
	// apparently, Body can be nil in some cases
	if resp.Body == nil {
		return nil, nil
	}
	if resp.Request != nil && resp.Request.Method == http.MethodHead {
		return nil, nil
	}

	var r io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		r = fl
	case "br":
		r = brotli.NewReader(resp.Body)
	default:
		r = resp.Body
	}

	return io.ReadAll(r)
}
