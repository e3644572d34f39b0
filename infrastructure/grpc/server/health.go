package server

import (
	"log/slog"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name probes ask for. The empty name reports the process.
const ServiceName = "interactions"

// HealthServer reports NOT_SERVING until the registry is sealed and the endpoint listens,
// and again once shutdown starts.
type HealthServer struct {
	log    *slog.Logger
	health *health.Server
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	h := &HealthServer{log: log, health: health.NewServer()}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthServer) MarkServing() {
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// MarkNotServing is called at shutdown. Later status changes are ignored.
func (h *HealthServer) MarkNotServing() {
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	h.health.Shutdown()
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	h.log.Debug("Health status changed", "status", status.String())
}

// NewGRPCServer builds the gRPC server exposing the health service.
func NewGRPCServer(log *slog.Logger, h *HealthServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(log),
		))
	healthpb.RegisterHealthServer(s, h.health)
	return s
}
