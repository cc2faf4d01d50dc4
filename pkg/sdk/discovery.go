package sdk

import "os"

// DefaultAddr is the daemon address used when none is configured.
const DefaultAddr = "localhost:7002"

// Addr resolves the daemon address: explicit value, then
// CELERIX_ATTACH_ADDR, then DefaultAddr.
func Addr(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if addr := os.Getenv("CELERIX_ATTACH_ADDR"); addr != "" {
		return addr
	}
	return DefaultAddr
}
