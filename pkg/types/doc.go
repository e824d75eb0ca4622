// Package types defines the Store and Codec interfaces and the errors shared
// by the larder repository and its backends.
package types
