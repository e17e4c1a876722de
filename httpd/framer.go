package httpd

import "bytes"

var (
	headerTerminator = []byte("\r\n\r\n")
	// 只识别GET一种方法
	methodPrefix = []byte("GET ")
)

// frame 判断c.buf中是否已经有完整的请求头。
// 只扫描上次调用之后新到的字节，并向前多看3个字节，以免漏掉被拆成两次recv的终止符
func frame(c *conn) bool {
	start := c.scanned - (len(headerTerminator) - 1)
	if start < 0 {
		start = 0
	}
	if bytes.Index(c.buf[start:], headerTerminator) >= 0 {
		return true
	}
	c.scanned = len(c.buf)
	return false
}

// requestURI 取出GET之后到下一个空格为止的URI，缺少前缀或空格时返回空串
func requestURI(buf []byte) string {
	i := bytes.Index(buf, methodPrefix)
	if i < 0 {
		return ""
	}
	rest := buf[i+len(methodPrefix):]
	j := bytes.IndexByte(rest, ' ')
	if j < 0 {
		return ""
	}
	return string(rest[:j])
}
