// Package lifecycle holds process-wide lifecycle settings shared by deliveries.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of each delivery.
const DefaultTimeout = 15 * time.Second
