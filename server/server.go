package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sisu-network/lib/log"
)

const Namespace = "sentinel"

// Server serves the json-rpc api on / and the prometheus metrics on /metrics.
type Server struct {
	handler       http.Handler
	listenAddress string
	srv           *http.Server
}

func NewServer(api *ApiHandler, port int) (*Server, error) {
	handler := rpc.NewServer()
	if err := handler.RegisterName(Namespace, api); err != nil {
		return nil, fmt.Errorf("cannot register api: %w", err)
	}

	return &Server{
		handler:       newMux(handler),
		listenAddress: fmt.Sprintf("0.0.0.0:%d", port),
	}, nil
}

func newMux(handler *rpc.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler)

	return mux
}

func (s *Server) Run() {
	listener, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		panic(err)
	}

	s.srv = &http.Server{Handler: s.handler}
	log.Info("Running server at ", s.listenAddress)
	if err := s.srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		log.Error("Server stopped, err = ", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	return s.srv.Shutdown(ctx)
}
