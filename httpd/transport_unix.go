//go:build unix

package httpd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

const (
	listenBacklog   = 128
	defaultRecvSize = 4 << 10 // 单次recv最多读取4KB
)

// UnixTransport 基于golang.org/x/sys/unix实现Transport，
// 创建的描述符都是非阻塞的
type UnixTransport struct {
	// 绑定的IPv4地址，空串表示0.0.0.0
	Host string
	// 单次Recv的上限，0表示4KB
	RecvSize int
}

func (t *UnixTransport) Listen(port int) (Listener, error) {
	var addr unix.SockaddrInet4
	addr.Port = port
	if t.Host != "" {
		ip := net.ParseIP(t.Host).To4()
		if ip == nil {
			return nil, fmt.Errorf("invalid IPv4 host %q", t.Host)
		}
		copy(addr.Addr[:], ip)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	// 允许进程重启后立刻重新绑定同一端口
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind: %w", err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen: %w", err)
	}

	recvSize := t.RecvSize
	if recvSize <= 0 {
		recvSize = defaultRecvSize
	}
	return &unixListener{fd: fd, recvSize: recvSize}, nil
}

type unixListener struct {
	fd       int
	recvSize int
}

func (l *unixListener) Fd() int { return l.fd }

// Addr 返回实际绑定的地址，监听临时端口时有用
func (l *unixListener) Addr() (string, error) {
	sa, err := unix.Getsockname(l.fd)
	if err != nil {
		return "", err
	}
	return sockaddrString(sa), nil
}

func (l *unixListener) Accept() (Socket, error) {
	for {
		nfd, sa, err := unix.Accept(l.fd)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, ErrWouldBlock
		}
		if err != nil {
			return nil, fmt.Errorf("accept: %w", err)
		}
		if err := unix.SetNonblock(nfd, true); err != nil {
			unix.Close(nfd)
			return nil, fmt.Errorf("set nonblock: %w", err)
		}
		return &unixSocket{fd: nfd, remote: sockaddrString(sa), scratch: make([]byte, l.recvSize)}, nil
	}
}

func (l *unixListener) Close() error {
	return unix.Close(l.fd)
}

type unixSocket struct {
	fd      int
	remote  string
	scratch []byte
}

func (s *unixSocket) Fd() int            { return s.fd }
func (s *unixSocket) RemoteAddr() string { return s.remote }

func (s *unixSocket) Recv(buf []byte) ([]byte, error) {
	n, err := unix.Read(s.fd, s.scratch)
	switch {
	case err == unix.EAGAIN || err == unix.EWOULDBLOCK:
		return buf, ErrWouldBlock
	case errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.ENOTCONN) || errors.Is(err, unix.EPIPE):
		// 对端已经不可达，和正常关闭一样处理
		return buf, io.EOF
	case err != nil:
		return buf, err
	case n == 0:
		return buf, io.EOF
	}
	return append(buf, s.scratch[:n]...), nil
}

// Send 写完b的全部内容。发送缓冲区满时用poll(2)等待可写，而不是空转
func (s *unixSocket) Send(b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(s.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLOUT}}
			if _, err := unix.Poll(fds, -1); err != nil && err != unix.EINTR {
				return fmt.Errorf("poll for write: %w", err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}
		b = b[n:]
	}
	return nil
}

func (s *unixSocket) Close() error {
	return unix.Close(s.fd)
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	}
	return ""
}
