package httpd

import "io"

// ResponseWriter 是Handler回写客户端的唯一途径。
// 每次Write都直接发给socket，没有状态行和首部的处理，完整的响应由Handler自己写。
// Handler返回之后ResponseWriter即失效，之后的Write一律返回io.ErrClosedPipe。
type ResponseWriter interface {
	Write([]byte) (n int, err error)
}

// response 持有的是accept时拿到的socket而不是槽位，
// 槽位在Handler返回后会被下一个连接复用
type response struct {
	sock Socket
	done bool
}

func setupResponse(c *conn) *response {
	return &response{sock: c.sock}
}

func (w *response) Write(b []byte) (n int, err error) {
	if w.done || w.sock == nil {
		return 0, io.ErrClosedPipe
	}
	if err := w.sock.Send(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// finish 在Handler返回后调用
func (w *response) finish() {
	w.done = true
	w.sock = nil
}

// rejectResponse 发给在所有槽位都被占用时到来的客户端
const rejectResponse = "HTTP/1.0 429 Too Many Requests\r\n\r\n" +
	"Sorry, the maximum number of clients has been reached. Please try again later.\r\n"
