package main

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/gzip"

	"tinyhttpd/httpd"
)

// echoHandler answers every request with the request itself.
type echoHandler struct {
	logger *slog.Logger
}

func (h *echoHandler) ServeHTTP(w httpd.ResponseWriter, r *httpd.Request) {
	h.logger.Info("request",
		"remote", r.RemoteAddr,
		"uri", r.RequestURI,
		"path", r.Path,
		"query", len(r.Query),
		"bytes", len(r.Bytes()))

	body := r.Bytes()
	if acceptsGzip(r.Header().Get("Accept-Encoding")) {
		compressed, err := gzipBytes(body)
		if err != nil {
			h.logger.Error("compressing response", "err", err)
		} else {
			writeAll(h.logger, w, []byte("HTTP/1.0 200 OK\r\nContent-Encoding: gzip\r\n\r\n"), compressed)
			return
		}
	}
	writeAll(h.logger, w, []byte("HTTP/1.0 200 OK\r\n\r\n"), body)
}

func writeAll(logger *slog.Logger, w httpd.ResponseWriter, parts ...[]byte) {
	for _, p := range parts {
		if _, err := w.Write(p); err != nil {
			logger.Warn("writing response", "err", err)
			return
		}
	}
}

func acceptsGzip(acceptEncoding string) bool {
	for _, enc := range strings.Split(acceptEncoding, ",") {
		// parameters such as "gzip;q=0.8" still count
		enc, _, _ = strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(enc, "gzip") {
			return true
		}
	}
	return false
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
