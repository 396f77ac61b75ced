package server

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall
// ("") status.
const ServiceName = "leadboard.Dashboard"

// NewGRPCServer creates a gRPC server exposing the standard health service.
// It reports NOT_SERVING until the first poll has loaded data.
func (s *Server) NewGRPCServer(authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)
	return srv
}

// HandleLoad updates the health status from the store. Register it with the
// poller's OnLoad hook.
func (s *Server) HandleLoad() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.records.Loaded() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Shutdown marks the health service as not serving.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}
