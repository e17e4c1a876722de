package httpd

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// fakeNet is an in-memory Transport and Poller. Sockets are readable while
// they have queued input; the listener is readable while dials are pending.
type fakeNet struct {
	ln        *fakeListener
	nextFd    int
	listenErr error
	pollErr   error
	waits     [][]int
	timeouts  []time.Duration
}

func newFakeNet() *fakeNet {
	return &fakeNet{nextFd: 10}
}

func (n *fakeNet) Listen(port int) (Listener, error) {
	if n.listenErr != nil {
		return nil, n.listenErr
	}
	n.ln = &fakeListener{fd: 3, port: port, accepted: make(map[int]*fakeSocket)}
	return n.ln, nil
}

// dial queues a new client on the listener backlog.
func (n *fakeNet) dial() *fakeSocket {
	s := &fakeSocket{fd: n.nextFd, remote: fmt.Sprintf("10.0.0.1:%d", 40000+n.nextFd)}
	n.nextFd++
	n.ln.pending = append(n.ln.pending, s)
	return s
}

func (n *fakeNet) Wait(fds []int, timeout time.Duration) ([]int, error) {
	n.waits = append(n.waits, append([]int(nil), fds...))
	n.timeouts = append(n.timeouts, timeout)
	if n.pollErr != nil {
		return nil, n.pollErr
	}
	var ready []int
	for _, fd := range fds {
		if fd == n.ln.fd {
			if len(n.ln.pending) > 0 {
				ready = append(ready, fd)
			}
			continue
		}
		if s := n.ln.accepted[fd]; s != nil && s.readable() {
			ready = append(ready, fd)
		}
	}
	return ready, nil
}

func (n *fakeNet) lastWait() []int {
	if len(n.waits) == 0 {
		return nil
	}
	return n.waits[len(n.waits)-1]
}

type fakeListener struct {
	fd       int
	port     int
	pending  []*fakeSocket
	accepted map[int]*fakeSocket
	closed   bool
}

func (l *fakeListener) Fd() int { return l.fd }

func (l *fakeListener) Accept() (Socket, error) {
	if len(l.pending) == 0 {
		return nil, ErrWouldBlock
	}
	s := l.pending[0]
	l.pending = l.pending[1:]
	l.accepted[s.fd] = s
	return s, nil
}

func (l *fakeListener) Close() error {
	l.closed = true
	return nil
}

type fakeSocket struct {
	fd     int
	remote string
	// inbox holds []byte chunks and errors, handed out one per Recv.
	inbox   []any
	sent    bytes.Buffer
	sendErr error
	closed  bool
	recvs   int
}

func (s *fakeSocket) deliver(chunk string) { s.inbox = append(s.inbox, []byte(chunk)) }
func (s *fakeSocket) fail(err error)       { s.inbox = append(s.inbox, err) }
func (s *fakeSocket) hangup()              { s.fail(io.EOF) }
func (s *fakeSocket) readable() bool       { return !s.closed && len(s.inbox) > 0 }

func (s *fakeSocket) Fd() int            { return s.fd }
func (s *fakeSocket) RemoteAddr() string { return s.remote }

func (s *fakeSocket) Recv(buf []byte) ([]byte, error) {
	s.recvs++
	if len(s.inbox) == 0 {
		return buf, ErrWouldBlock
	}
	item := s.inbox[0]
	s.inbox = s.inbox[1:]
	switch v := item.(type) {
	case []byte:
		return append(buf, v...), nil
	case error:
		return buf, v
	}
	return buf, nil
}

func (s *fakeSocket) Send(b []byte) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent.Write(b)
	return nil
}

func (s *fakeSocket) Close() error {
	s.closed = true
	return nil
}

// call is a copy of what a handler saw; the Request itself must not be kept.
type call struct {
	uri      string
	path     string
	rawQuery string
	query    []Pair
	raw      string
	active   int
}

type recorder struct {
	srv   *Server
	calls []call
	reply string
	panic any
}

func (h *recorder) ServeHTTP(w ResponseWriter, r *Request) {
	c := call{
		uri:      r.RequestURI,
		path:     r.Path,
		rawQuery: r.RawQuery,
		query:    append([]Pair(nil), r.Query...),
		raw:      string(r.Bytes()),
	}
	if h.srv != nil {
		c.active = h.srv.Active()
	}
	h.calls = append(h.calls, c)
	if h.reply != "" {
		io.WriteString(w, h.reply)
	}
	if h.panic != nil {
		panic(h.panic)
	}
}
