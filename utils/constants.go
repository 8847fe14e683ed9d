// File: utils/constants.go
package utils

import "time"

// GroundCacheNamespace is the prefix used for Redis ground listing keys.
const GroundCacheNamespace = "boxcric:grounds"

// HealthCheckInterval is how often the health monitor pings Mongo and Redis.
const HealthCheckInterval = 60 * time.Second

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"
