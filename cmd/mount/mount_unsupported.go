// +build !linux,!darwin,!freebsd

// Build for mount on unsupported platforms to stop go complaining
// about conditional compilation.
package mount
