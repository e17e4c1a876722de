package httpd

import "errors"

// 服务器本身不直接操作socket，所有的网络原语都通过Transport完成，
// 这样server loop可以在测试中被内存实现替换。

// ErrWouldBlock 表示Socket.Recv或Listener.Accept此刻没有可处理的数据，
// 服务器会在下一个quantum再试
var ErrWouldBlock = errors.New("httpd: operation would block")

// Transport 负责创建监听socket
type Transport interface {
	Listen(port int) (Listener, error)
}

// Listener 是非阻塞的监听socket
type Listener interface {
	// 交给Poller等待的描述符
	Fd() int
	// 从backlog中取出一个连接
	Accept() (Socket, error)
	Close() error
}

// Socket 是一个已accept的非阻塞连接
type Socket interface {
	Fd() int
	// Recv 只做一次接收，把收到的字节追加到buf后返回。
	// 对端离开时返回io.EOF，其他错误都视为暂时性的，连接保持不动
	Recv(buf []byte) ([]byte, error)
	// 写完b的全部内容才返回
	Send(b []byte) error
	Close() error
	RemoteAddr() string
}
