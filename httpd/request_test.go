package httpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleRequest = "GET /index?name=gu&token=1234&name=li HTTP/1.1\r\n" +
	"Content-Type: text/plain\r\n" +
	"Host: 127.0.0.1:8080\r\n" +
	"Accept-Encoding: gzip, deflate, br\r\n" +
	"Cookie: uuid=12314753; tid=1BDB9E9; HOME=1\r\n" +
	"X-Multi: a\r\n" +
	"X-Multi: b\r\n" +
	"Malformed line\r\n" +
	"\r\n"

func sampleConn(raw string) *conn {
	c := &conn{}
	c.attach(&fakeSocket{fd: 10, remote: "10.0.0.1:5555"})
	c.buf = append(c.buf, raw...)
	return c
}

func TestNewRequest(t *testing.T) {
	r := newRequest(sampleConn(sampleRequest))

	assert.Equal(t, "/index?name=gu&token=1234&name=li", r.RequestURI)
	assert.Equal(t, "/index", r.Path)
	assert.Equal(t, "name=gu&token=1234&name=li", r.RawQuery)
	assert.Equal(t, []Pair{{"name", "gu"}, {"token", "1234"}, {"name", "li"}}, r.Query)
	assert.Equal(t, "10.0.0.1:5555", r.RemoteAddr)
	assert.Equal(t, sampleRequest, string(r.Bytes()))
}

func TestRequestQueryValue(t *testing.T) {
	r := newRequest(sampleConn(sampleRequest))
	assert.Equal(t, "gu", r.QueryValue("name"), "first value wins")
	assert.Equal(t, "1234", r.QueryValue("token"))
	assert.Equal(t, "", r.QueryValue("missing"))
}

func TestRequestHeader(t *testing.T) {
	r := newRequest(sampleConn(sampleRequest))
	h := r.Header()

	assert.Equal(t, "text/plain", h.Get("Content-Type"))
	assert.Equal(t, "127.0.0.1:8080", h.Get("Host"))
	assert.Equal(t, []string{"a", "b"}, h.Values("X-Multi"))
	assert.Equal(t, "", h.Get("Malformed line"))
	assert.Len(t, h, 5)
}

func TestRequestHeaderIgnoresBytesAfterTerminator(t *testing.T) {
	r := newRequest(sampleConn("GET / HTTP/1.0\r\nA: 1\r\n\r\nB: 2\r\n"))
	assert.Equal(t, "1", r.Header().Get("A"))
	assert.Equal(t, "", r.Header().Get("B"))
}

func TestRequestCookie(t *testing.T) {
	r := newRequest(sampleConn(sampleRequest))
	assert.Equal(t, "12314753", r.Cookie("uuid"))
	assert.Equal(t, "1BDB9E9", r.Cookie("tid"))
	assert.Equal(t, "1", r.Cookie("HOME"))
	assert.Equal(t, "", r.Cookie("missing"))
}

func TestRequestHeaderCaseInsensitive(t *testing.T) {
	r := newRequest(sampleConn("GET / HTTP/1.0\r\n" +
		"accept-encoding: gzip\r\n" +
		"x-multi: a\r\n" +
		"X-MULTI: b\r\n" +
		"cookie: sid=42\r\n" +
		"\r\n"))
	h := r.Header()

	assert.Equal(t, "gzip", h.Get("Accept-Encoding"))
	assert.Equal(t, "gzip", h.Get("accept-encoding"))
	assert.Equal(t, []string{"a", "b"}, h.Values("X-Multi"))
	assert.Contains(t, h, "Cookie")
	assert.Equal(t, "42", r.Cookie("sid"))
}

func TestHeaderAddCanonicalizes(t *testing.T) {
	h := make(Header)
	h.Add("content-type", "text/plain")
	h.Add("CONTENT-TYPE", "text/html")

	assert.Equal(t, Header{"Content-Type": {"text/plain", "text/html"}}, h)
	assert.Equal(t, "text/plain", h.Get("Content-type"))
}

func TestRequestNoURI(t *testing.T) {
	r := newRequest(sampleConn("HEAD /x HTTP/1.0\r\n\r\n"))
	assert.Empty(t, r.RequestURI)
	assert.Empty(t, r.Path)
	assert.Empty(t, r.RawQuery)
	assert.Nil(t, r.Query)
	assert.Empty(t, r.Header())
}
