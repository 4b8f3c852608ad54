package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"sync"

	"github.com/BrugadaSyndrome/bslogger"
)

// HttpServer serves net/rpc on rpc.DefaultRPCPath of a private mux.
type HttpServer struct {
	address  string
	listener net.Listener
	object   interface{}
	server   *http.Server

	Logger bslogger.Logger
	Name   string
	WG     *sync.WaitGroup
}

func NewHttpServer(object interface{}, address string, name string) HttpServer {
	return HttpServer{
		address: address,
		object:  object,
		Logger:  bslogger.NewLogger(name, bslogger.Normal, nil),
		Name:    name,
		WG:      &sync.WaitGroup{},
	}
}

func (hs *HttpServer) Address() string {
	if hs.listener != nil {
		return hs.listener.Addr().String()
	}
	return hs.address
}

func (hs *HttpServer) Run() error {
	handler, err := newHandler(hs.object, hs.Logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc(rpc.DefaultRPCPath, func(w http.ResponseWriter, r *http.Request) {
		hs.Logger.Debugf("Server opened connection to client at address %s", r.RemoteAddr)
		handler.ServeHTTP(w, r)
	})

	hs.listener, err = net.Listen("tcp", hs.address)
	if err != nil {
		hs.Logger.Errorf("Listening at address %s", hs.address)
		return err
	}

	hs.server = &http.Server{Handler: mux}
	hs.WG.Add(1)
	go func() {
		defer hs.WG.Done()
		if err := hs.server.Serve(hs.listener); !errors.Is(err, http.ErrServerClosed) {
			hs.Logger.Errorf("Error serving at address %s - %s", hs.Address(), err)
		}
	}()

	hs.Logger.Infof("Running server at address %s", hs.Address())
	return nil
}

// Stop closes the listener. Connections hijacked by the rpc handler are not tracked by
// http.Server and stay open until their clients disconnect.
func (hs *HttpServer) Stop() error {
	if hs.server == nil {
		return errors.New("server is not running")
	}
	if err := hs.server.Shutdown(context.Background()); err != nil {
		hs.Logger.Errorf("Shutting down server at address %s", hs.Address())
		return err
	}
	hs.WG.Wait()
	hs.Logger.Infof("Shut down server at address %s", hs.Address())
	return nil
}
