package grpcserver

import (
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// CatalogService is the health service name that tracks catalog readiness.
const CatalogService = "bookmap.Catalog"

// Server exposes grpc.health.v1 and reflection. Both the overall status and
// CatalogService start NOT_SERVING until the first catalog load.
type Server struct {
	GRPC   *grpc.Server
	Health *health.Server
}

func NewServer(opts ...grpc.ServerOption) *Server {
	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	s := &Server{GRPC: gs, Health: hs}
	s.SetServing(false)
	return s
}

func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus("", st)
	s.Health.SetServingStatus(CatalogService, st)
}

func (s *Server) Serve(ln net.Listener) error {
	log.Printf("[grpc] listening on %s", ln.Addr())
	return s.GRPC.Serve(ln)
}

// Stop reports NOT_SERVING to watchers, then drains in-flight RPCs.
func (s *Server) Stop() {
	s.Health.Shutdown()
	s.GRPC.GracefulStop()
}
