//go:build !unix

package httpd

// 非unix平台没有内置的socket实现，需要调用者提供Transport和Poller

func defaultTransport() Transport { return nil }

func defaultPoller() Poller { return nil }
