//go:build unix

package httpd

func defaultTransport() Transport { return &UnixTransport{} }

func defaultPoller() Poller { return &UnixPoller{} }
