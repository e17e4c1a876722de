package httpd

// server.go 负责服务器的启动以及每一个quantum的调度逻辑。
//
// 和net/http不同，这里的服务器没有自己的goroutine：调用者反复调用Step，
// 每次Step完成一轮 poll -> 处理已有连接 -> 最多accept一个新连接，然后返回。

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"
)

// DefaultMaxHeaderBytes 是客户端在发出终止符之前最多能发送的字节数
const DefaultMaxHeaderBytes = 1 << 20

// Handler 处理一个已经接收完整的请求，返回后连接即被关闭
type Handler interface {
	ServeHTTP(w ResponseWriter, r *Request)
}

// HandlerFunc 让普通函数可以作为Handler使用
type HandlerFunc func(w ResponseWriter, r *Request)

func (f HandlerFunc) ServeHTTP(w ResponseWriter, r *Request) {
	f(w, r)
}

// Server 只需要Port和Handler就能运行，其余字段都有默认值。
// Server必须只在一个goroutine中使用。
type Server struct {
	Port    int     // 监听端口，必须大于0
	Handler Handler // 处理请求的回调，返回后连接即被关闭

	// 槽位数量，0表示DefaultMaxConns
	MaxConns int
	// 每个Step等待就绪的最长时间，0表示DefaultPollTimeout
	PollTimeout time.Duration
	// 缓冲区超过这个大小仍没有终止符就断开连接。
	// 0表示DefaultMaxHeaderBytes，负数表示不限制
	MaxHeaderBytes int

	Logger    *slog.Logger
	Transport Transport // nil时使用平台自带的socket实现
	Poller    Poller    // nil时使用平台自带的poller

	ln        Listener
	poller    Poller
	log       *slog.Logger
	timeout   time.Duration
	maxHeader int
	pool      *pool
	fds       []int
	stats     Stats
}

// Stats 是Listen以来的计数
type Stats struct {
	Accepted     uint64 // 放入槽位的连接
	Rejected     uint64 // 回复429后关闭的连接
	Served       uint64 // 交给Handler的请求
	Disconnected uint64 // 请求完整之前就断开的连接
	Overflowed   uint64 // 超过MaxHeaderBytes被断开的连接
}

// Listen 检查配置并打开监听socket。
// 返回的错误是CodeInvalidConfig或CodeListenFailed类型的*Error。
func (s *Server) Listen() error {
	if s.ln != nil {
		return newError(CodeInvalidConfig, "server is already listening", nil)
	}
	if s.Port <= 0 {
		return newError(CodeInvalidConfig, fmt.Sprintf("port must be positive, got %d", s.Port), nil)
	}
	if s.MaxConns < 0 {
		return newError(CodeInvalidConfig, fmt.Sprintf("max conns must be positive, got %d", s.MaxConns), nil)
	}
	if s.Handler == nil {
		return newError(CodeInvalidConfig, "handler is required", nil)
	}

	s.log = s.Logger
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	transport := s.Transport
	if transport == nil {
		transport = defaultTransport()
	}
	s.poller = s.Poller
	if s.poller == nil {
		s.poller = defaultPoller()
	}
	if transport == nil || s.poller == nil {
		return newError(CodeInvalidConfig, "no socket transport available on this platform", nil)
	}

	s.timeout = s.PollTimeout
	if s.timeout <= 0 {
		s.timeout = DefaultPollTimeout
	}
	s.maxHeader = s.MaxHeaderBytes
	if s.maxHeader == 0 {
		s.maxHeader = DefaultMaxHeaderBytes
	}
	maxConns := s.MaxConns
	if maxConns == 0 {
		maxConns = DefaultMaxConns
	}

	ln, err := transport.Listen(s.Port)
	if err != nil {
		return newError(CodeListenFailed, fmt.Sprintf("listening on port %d", s.Port), err)
	}
	s.ln = ln
	s.pool = newPool(maxConns)
	s.fds = make([]int, 0, maxConns+1)
	s.stats = Stats{}

	s.log.Info("listening", "port", s.Port, "max_conns", maxConns, "poll_timeout", s.timeout)
	return nil
}

// Step 执行一个quantum：等待就绪，处理池中所有就绪的连接，最后最多accept一个新连接。
//
// 本次Step中accept的连接不会在同一个Step里被读取。
// 除非Handler阻塞，Step总会很快返回。
func (s *Server) Step() error {
	if s.ln == nil {
		return newError(CodeNotListening, "Listen has not been called", nil)
	}

	s.fds = s.fds[:0]
	s.pool.each(func(c *conn) {
		s.fds = append(s.fds, c.sock.Fd())
	})
	s.fds = append(s.fds, s.ln.Fd())

	ready, err := s.poller.Wait(s.fds, s.timeout)
	if err != nil {
		return newError(CodePollFailed, "waiting for readiness", err)
	}
	if len(ready) == 0 {
		return nil
	}
	rs := newReadySet(ready)

	// 先处理已有的连接，再accept新连接，
	// 保证新连接在被调用者观察到之前不会被读取
	s.pool.each(func(c *conn) {
		if rs.has(c.sock.Fd()) {
			s.service(c)
		}
	})
	if rs.has(s.ln.Fd()) {
		s.accept()
	}
	return nil
}

// Serve 在调用者的goroutine里反复调用Step，直到ctx结束。
// poll失败时记录日志，等待一个超时周期后重试，其他错误直接返回。
func (s *Server) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := s.Step()
		if err == nil {
			continue
		}
		if !IsCode(err, CodePollFailed) {
			return err
		}
		s.log.Error("step failed", "err", err)

		t := time.NewTimer(s.timeout)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// ListenAndServe 先Listen再Serve，返回时关闭服务器
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	defer s.Close()
	return s.Serve(ctx)
}

// Close 关闭所有连接和监听socket
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	s.pool.each(func(c *conn) {
		s.closeConn(c)
	})
	err := s.ln.Close()
	s.ln = nil
	return err
}

// Active 返回已占用的槽位数
func (s *Server) Active() int {
	if s.pool == nil {
		return 0
	}
	return s.pool.active()
}

func (s *Server) Stats() Stats {
	return s.stats
}

// Addr 返回监听地址，Transport不支持时返回空串
func (s *Server) Addr() string {
	if a, ok := s.ln.(interface{ Addr() (string, error) }); ok {
		if addr, err := a.Addr(); err == nil {
			return addr
		}
	}
	return ""
}

func (s *Server) accept() {
	c := s.pool.acquire()
	if c == nil {
		s.reject()
		return
	}

	c.reset()
	sock, err := s.ln.Accept()
	if err != nil {
		if !errors.Is(err, ErrWouldBlock) {
			s.log.Warn("accept failed", "err", err)
		}
		return
	}
	c.attach(sock)
	s.stats.Accepted++
	s.log.Debug("accepted connection", "conn", c.id.String(), "slot", c.slot, "remote", sock.RemoteAddr())
}

// reject 在所有槽位都被占用时拒绝客户端：
// socket不会进入连接池，写完429后立刻关闭。
func (s *Server) reject() {
	sock, err := s.ln.Accept()
	if err != nil {
		if !errors.Is(err, ErrWouldBlock) {
			s.log.Warn("accept failed", "err", err)
		}
		return
	}
	s.stats.Rejected++
	s.log.Warn("connection pool exhausted, rejecting client", "remote", sock.RemoteAddr(), "max_conns", s.pool.capacity())

	if err := sock.Send([]byte(rejectResponse)); err != nil {
		s.log.Debug("sending rejection failed", "remote", sock.RemoteAddr(), "err", err)
	}
	if err := sock.Close(); err != nil {
		s.log.Debug("closing rejected client failed", "remote", sock.RemoteAddr(), "err", err)
	}
}

// service 对c做一次recv，请求头接收完整后交给Handler并释放槽位
func (s *Server) service(c *conn) {
	buf, err := c.sock.Recv(c.buf)
	c.buf = buf
	switch {
	case errors.Is(err, io.EOF):
		s.stats.Disconnected++
		s.log.Debug("peer disconnected", "conn", c.id.String(), "slot", c.slot, "buffered", len(c.buf))
		s.closeConn(c)
		return
	case err != nil:
		// 暂时性错误：保持连接不动，下一个quantum再读
		if !errors.Is(err, ErrWouldBlock) {
			s.log.Debug("receive failed, retrying next step", "conn", c.id.String(), "err", err)
		}
		return
	}

	if !frame(c) {
		if s.maxHeader > 0 && len(c.buf) > s.maxHeader {
			s.stats.Overflowed++
			s.log.Warn("request header too large, dropping connection", "conn", c.id.String(), "remote", c.sock.RemoteAddr(), "buffered", len(c.buf))
			s.closeConn(c)
		}
		return
	}
	s.handle(c)
}

func (s *Server) handle(c *conn) {
	req := newRequest(c)
	w := setupResponse(c)
	defer func() {
		w.finish()
		if err := recover(); err != nil {
			s.log.Error("panic recovered in handler", "conn", c.id.String(), "uri", req.RequestURI, "err", err, "stack", string(debug.Stack()))
		}
		s.log.Debug("request served", "conn", c.id.String(), "uri", req.RequestURI, "elapsed", time.Since(c.acceptedAt))
		s.closeConn(c)
	}()

	s.stats.Served++
	s.Handler.ServeHTTP(w, req)
}

func (s *Server) closeConn(c *conn) {
	if err := c.close(); err != nil {
		s.log.Debug("closing connection failed", "slot", c.slot, "err", err)
	}
}
