// Package framinggo provides the version information for framing-go.
package framinggo

// Version is the current version of framing-go.
const Version = "0.2.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
