package rpc

import (
	"errors"
	"fmt"
	"net/rpc"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

// connection is the client side shared by both transports. Only the dial differs.
type connection struct {
	client        *rpc.Client
	calls         map[string]uint64
	dial          func(address string) (*rpc.Client, error)
	mutex         sync.Mutex
	serverAddress string
	timeouts      map[string]time.Duration

	Logger bslogger.Logger
	Name   string
}

func newConnection(serverAddress string, name string, dial func(address string) (*rpc.Client, error)) connection {
	return connection{
		calls:         make(map[string]uint64),
		dial:          dial,
		serverAddress: serverAddress,
		timeouts:      make(map[string]time.Duration),
		Logger:        bslogger.NewLogger(name, bslogger.Normal, nil),
		Name:          name,
	}
}

func (c *connection) ServerAddress() string {
	return c.serverAddress
}

// SetTimeout bounds calls to method. Methods without a timeout wait as long as the server
// takes, which is what a long poll like Coordinator.GetTask needs.
func (c *connection) SetTimeout(method string, timeout time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.timeouts[method] = timeout
}

func (c *connection) Connect() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.client != nil {
		c.Logger.Warningf("Already connected to server at address %s", c.serverAddress)
		return nil
	}

	client, err := c.dial(c.serverAddress)
	if err != nil {
		c.Logger.Errorf("Connecting to server at address %s - %s", c.serverAddress, err)
		return err
	}
	c.client = client
	c.Logger.Infof("Connected to server at %s", c.serverAddress)
	return nil
}

func (c *connection) Call(method string, request interface{}, reply interface{}) error {
	c.mutex.Lock()
	client := c.client
	timeout := c.timeouts[method]
	c.calls[method]++
	c.mutex.Unlock()

	if client == nil {
		message := fmt.Sprintf("Not connected to server at address %s : method %s", c.serverAddress, method)
		c.Logger.Error(message)
		return errors.New(message)
	}

	var err error
	if timeout <= 0 {
		err = client.Call(method, request, reply)
	} else {
		call := client.Go(method, request, reply, make(chan *rpc.Call, 1))
		select {
		case <-call.Done:
			err = call.Error
		case <-time.After(timeout):
			err = fmt.Errorf("calling %s on %s timed out after %s", method, c.serverAddress, timeout)
		}
	}
	if err != nil {
		c.logCallError(method, err)
		return err
	}
	c.Logger.Debugf("Calling server [%s] %s", c.serverAddress, method)
	return nil
}

// logCallError reports a failed call. Errors returned by the remote method itself are part of
// the conversation (a coordinator saying it has no more tasks) and only show up in debug output.
func (c *connection) logCallError(method string, err error) {
	var serverErr rpc.ServerError
	if errors.As(err, &serverErr) {
		c.Logger.Debugf("Server at address %s answered %s with: %s", c.serverAddress, method, err)
		return
	}
	c.Logger.Errorf("Calling server at address: %s, method: %s - %s", c.serverAddress, method, err)
}

// Calls returns how many times each method has been called, successful or not.
func (c *connection) Calls() map[string]uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	calls := make(map[string]uint64, len(c.calls))
	for method, n := range c.calls {
		calls[method] = n
	}
	return calls
}

func (c *connection) Disconnect() error {
	c.mutex.Lock()
	client := c.client
	c.client = nil
	c.mutex.Unlock()

	if client == nil {
		message := fmt.Sprintf("Already disconnected from server at address %s", c.serverAddress)
		c.Logger.Warning(message)
		return errors.New(message)
	}

	err := client.Close()
	if err != nil {
		c.Logger.Errorf("Disconnecting from server at address %s", c.serverAddress)
		return err
	}
	c.Logger.Infof("Disconnected from server at %s [%s]", c.serverAddress, c.callSummary())
	return nil
}

func (c *connection) callSummary() string {
	calls := c.Calls()
	methods := make([]string, 0, len(calls))
	for method := range calls {
		methods = append(methods, method)
	}
	sort.Strings(methods)

	summary := make([]string, len(methods))
	for i, method := range methods {
		summary[i] = fmt.Sprintf("%s: %d", method, calls[method])
	}
	return strings.Join(summary, ", ")
}

// TcpClient speaks gob directly over a TCP connection.
type TcpClient struct {
	connection
}

func NewTcpClient(serverAddress string, name string) *TcpClient {
	return &TcpClient{newConnection(serverAddress, name, func(address string) (*rpc.Client, error) {
		return rpc.Dial("tcp", address)
	})}
}

// HttpClient reaches a server registered on an HTTP mux through a CONNECT request.
type HttpClient struct {
	connection
}

func NewHttpClient(serverAddress string, name string) *HttpClient {
	return &HttpClient{newConnection(serverAddress, name, func(address string) (*rpc.Client, error) {
		return rpc.DialHTTP("tcp", address)
	})}
}
