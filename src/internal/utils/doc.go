// Package utils provides small file helpers shared across cdnsift.
package utils
