package httpd

import "time"

// DefaultPollTimeout 是一个quantum等待就绪的最长时间
const DefaultPollTimeout = 100 * time.Millisecond

// Poller 是就绪多路复用器。
//
// Wait 阻塞到fds中至少一个可读或超时，按传入顺序返回可读的描述符。
// 超时不是错误，返回空切片，Step据此把控制权交还调用者。
type Poller interface {
	Wait(fds []int, timeout time.Duration) ([]int, error)
}

// readySet 是一次Wait的结果，按描述符索引
type readySet map[int]struct{}

func newReadySet(fds []int) readySet {
	rs := make(readySet, len(fds))
	for _, fd := range fds {
		rs[fd] = struct{}{}
	}
	return rs
}

func (rs readySet) has(fd int) bool {
	_, ok := rs[fd]
	return ok
}
