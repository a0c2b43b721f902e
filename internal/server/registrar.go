package server

import "google.golang.org/grpc"

// Registrar is a common interface for all gRPC service registrars.
// grpc.ServiceRegistrar lets registrars attach to a real server or to test
// harnesses alike.
type Registrar interface {
	Register(s grpc.ServiceRegistrar)
}
