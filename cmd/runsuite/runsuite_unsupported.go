// +build !linux,!darwin,!freebsd

// Build for run-suite on unsupported platforms to stop go complaining
// about conditional compilation.
package runsuite
