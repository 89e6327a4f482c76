// Package delivery holds the interface shared by every bootable transport
// (HTTP today, potentially a worker or gRPC server later) so that cmd/dispatcher
// can start and stop them uniformly through Fx's lifecycle and group tags.
package delivery

import "context"

// Delivery is a transport that serves requests until ctx is canceled or it
// is stopped via an Fx lifecycle hook.
type Delivery interface {
	Serve(ctx context.Context) error
}
