//go:build unix

// example 展示如何在自己的循环里驱动服务器：服务器没有自己的线程，
// 每次调用Step才会处理一次连接。
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tinyhttpd/httpd"
)

type myHandler struct{}

func (*myHandler) ServeHTTP(w httpd.ResponseWriter, r *httpd.Request) {
	body := fmt.Sprintf("Serving: %s\n", r.Path)
	for _, p := range r.Query {
		body += fmt.Sprintf("  %s = %s\n", p.Key, p.Value)
	}
	fmt.Fprintf(w, "HTTP/1.0 200 OK\r\nContent-Type: text/plain\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
}

func main() {
	port := 8001
	if len(os.Args) > 1 {
		p, err := strconv.Atoi(os.Args[1])
		if err != nil {
			log.Fatalf("invalid port %q: %v", os.Args[1], err)
		}
		port = p
	}

	svr := &httpd.Server{
		Port:     port,
		Handler:  new(myHandler),
		MaxConns: 4,
	}
	if err := svr.Listen(); err != nil {
		log.Fatal(err)
	}
	defer svr.Close()
	fmt.Printf("Listening on http://0.0.0.0:%d\n", port)

	// Ctrl-C时跳出循环，让defer关闭所有连接和监听socket
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lastReport := time.Now()
	for ctx.Err() == nil {
		if err := svr.Step(); err != nil {
			log.Println(err)
			continue
		}
		// Step在空闲时也会在超时后返回，调用者可以顺便做点自己的事
		if time.Since(lastReport) > 10*time.Second {
			s := svr.Stats()
			fmt.Printf("active=%d served=%d rejected=%d\n", svr.Active(), s.Served, s.Rejected)
			lastReport = time.Now()
		}
	}
	fmt.Println("shutting down")
}
