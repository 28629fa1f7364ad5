//go:build !amd64

package rdrand

// RDRAND is an x86-64 instruction. Referencing an undefined identifier makes
// the build fail on every other architecture instead of producing a package
// without a hardware source.
var _ = rdrandRequiresAMD64
