package httpd

import (
	"time"

	"github.com/google/uuid"
)

// conn 是连接池中的一个槽位。
// sock为nil时槽位空闲，否则它只属于一个正在处理的客户端连接。
//
// 和每个连接一个goroutine的模型不同，这里不能阻塞地读到空行为止：
// 每个quantum只做一次非阻塞recv，把读到的字节追加到buf里，
// 直到buf中出现\r\n\r\n才认为请求头接收完毕。
type conn struct {
	slot int
	sock Socket
	buf  []byte
	// scanned 记录上次查找终止符时已检查过的字节数，避免每次都从头扫描
	scanned int

	id         uuid.UUID
	acceptedAt time.Time
}

func (c *conn) valid() bool {
	return c.sock != nil
}

// reset 清空缓冲区，保留已分配的容量
func (c *conn) reset() {
	c.buf = c.buf[:0]
	c.scanned = 0
}

// attach 把accept得到的socket放进这个槽位
func (c *conn) attach(sock Socket) {
	c.sock = sock
	c.id = uuid.New()
	c.acceptedAt = time.Now()
}

// close 关闭socket并释放槽位
func (c *conn) close() error {
	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.sock = nil
	c.reset()
	return err
}
