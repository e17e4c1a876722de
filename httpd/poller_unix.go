//go:build unix

package httpd

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// UnixPoller 用poll(2)实现Poller
type UnixPoller struct {
	pfds []unix.PollFd
}

func (p *UnixPoller) Wait(fds []int, timeout time.Duration) ([]int, error) {
	p.pfds = p.pfds[:0]
	for _, fd := range fds {
		p.pfds = append(p.pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}

	n, err := unix.Poll(p.pfds, int(timeout/time.Millisecond))
	if err == unix.EINTR {
		// 被信号打断，当作超时处理，下一个quantum再来
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	ready := make([]int, 0, n)
	for _, pfd := range p.pfds {
		// 挂断和错误也算可读，下一次recv会拿到EOF或错误
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready = append(ready, int(pfd.Fd))
		}
	}
	return ready, nil
}
