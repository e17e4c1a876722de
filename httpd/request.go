package httpd

import (
	"strings"
)

// Request 是对连接缓冲区的只读视图，在请求头接收完整之后构造。
// 它只在Handler调用期间有效：Handler返回后连接立刻关闭，缓冲区会被复用，
// 所以不要在Handler之外持有Request或Bytes()返回的切片。
type Request struct {
	// RequestURI 是"GET "之后到下一个空格为止的部分，请求行无法识别时为空串。
	// 只有RequestURI非空时才会解析Path、RawQuery和Query
	RequestURI string
	Path       string
	RawQuery   string
	Query      []Pair

	RemoteAddr string

	raw []byte

	// 首部和cookie都是懒加载，Handler用到时才解析
	header  Header
	cookies map[string]string
}

func newRequest(c *conn) *Request {
	r := &Request{raw: c.buf, RemoteAddr: c.sock.RemoteAddr()}
	r.RequestURI = requestURI(c.buf)
	if r.RequestURI != "" {
		u := ParseURI(r.RequestURI)
		r.Path, r.RawQuery, r.Query = u.Path, u.RawQuery, u.Query
	}
	return r
}

// Bytes 返回连接上收到的全部字节，包括终止符以及之后到达的内容
func (r *Request) Bytes() []byte {
	return r.raw
}

// QueryValue 返回name对应的第一个值，没有时返回空串
func (r *Request) QueryValue(name string) string {
	for _, p := range r.Query {
		if p.Key == name {
			return p.Value
		}
	}
	return ""
}

// Header 在第一次调用时解析首部
func (r *Request) Header() Header {
	if r.header == nil {
		r.header = parseHeader(r.raw)
	}
	return r.header
}

func (r *Request) Cookie(name string) string {
	if r.cookies == nil {
		r.parseCookies()
	}
	return r.cookies[name]
}

func (r *Request) parseCookies() {
	r.cookies = make(map[string]string)
	rawCookies := r.Header().Values("Cookie")

	for _, cookie := range rawCookies {
		// 例如: uuid=12314753; tid=1BDB9E9; HOME=1
		kvs := strings.Split(strings.TrimSpace(cookie), ";")
		for _, kv := range kvs {
			index := strings.IndexByte(kv, '=')
			if index == -1 {
				continue
			}
			r.cookies[strings.TrimSpace(kv[:index])] = strings.TrimSpace(kv[index+1:])
		}
	}
}
