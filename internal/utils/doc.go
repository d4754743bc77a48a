// Package utils holds small helpers shared by the extraction packages: a
// call timer, a zero-copy byte-to-string view and log previews.
package utils
