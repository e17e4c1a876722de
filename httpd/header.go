package httpd

import (
	"bytes"
	"net/textproto"
	"strings"
)

// Header 保存请求首部。
// 键统一按textproto.CanonicalMIMEHeaderKey规范化，大小写不同的同名首部视为同一个。
type Header map[string][]string

func (h Header) Add(key, val string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	h[key] = append(h[key], val)
}

func (h Header) Get(key string) string {
	if val, ok := h[textproto.CanonicalMIMEHeaderKey(key)]; ok && len(val) > 0 {
		return val[0]
	}
	return ""
}

func (h Header) Values(key string) []string {
	return h[textproto.CanonicalMIMEHeaderKey(key)]
}

// parseHeader 解析请求行与空行之间的首部，没有':'的行直接跳过
func parseHeader(buf []byte) Header {
	header := make(Header)

	end := bytes.Index(buf, headerTerminator)
	if end < 0 {
		return header
	}
	lines := strings.Split(string(buf[:end]), "\r\n")
	// 第一行是请求行
	for _, line := range lines[1:] {
		index := strings.IndexByte(line, ':')
		if index == -1 || index == len(line)-1 {
			continue
		}
		k, v := line[:index], strings.TrimSpace(line[index+1:])
		header.Add(k, v)
	}
	return header
}
