//go:build !debug

package fibers

const debugAssertions = false
