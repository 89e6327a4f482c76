// Package lifecycle holds process-wide shutdown/startup timing constants
// shared by every delivery server (HTTP, worker, batch scheduler).
package lifecycle

import "time"

// DefaultTimeout bounds how long a graceful shutdown waits for in-flight
// requests before the server is torn down forcibly.
const DefaultTimeout = 10 * time.Second
