package rpc

import (
	"fmt"
	"strings"
	"time"
)

const (
	TCP Transport = iota
	HTTP
)

// Transport selects how net/rpc calls travel: gob over a raw TCP connection, or gob tunnelled
// through an HTTP CONNECT.
type Transport int

func (t Transport) String() string {
	if t < TCP || t > HTTP {
		return fmt.Sprintf("Transport(%d)", int(t))
	}
	return []string{
		"tcp", "http",
	}[t]
}

func (t Transport) MarshalText() ([]byte, error) {
	if t < TCP || t > HTTP {
		return nil, fmt.Errorf("unknown transport %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Transport) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "tcp":
		*t = TCP
	case "http":
		*t = HTTP
	default:
		return fmt.Errorf("unknown transport %q (want tcp or http)", text)
	}
	return nil
}

type Server interface {
	Run() error
	Stop() error
	// Address is the address the server listens on once Run has returned.
	Address() string
}

type Client interface {
	Connect() error
	Call(method string, request interface{}, reply interface{}) error
	Disconnect() error
	ServerAddress() string
	SetTimeout(method string, timeout time.Duration)
}

// NewServer registers object with a fresh net/rpc server reachable over transport.
func NewServer(transport Transport, object interface{}, address string, name string) Server {
	if transport == HTTP {
		server := NewHttpServer(object, address, name)
		return &server
	}
	server := NewTcpServer(object, address, name)
	return &server
}

func NewClient(transport Transport, serverAddress string, name string) Client {
	if transport == HTTP {
		return NewHttpClient(serverAddress, name)
	}
	return NewTcpClient(serverAddress, name)
}
