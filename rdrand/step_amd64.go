//go:build amd64

package rdrand

import "golang.org/x/sys/cpu"

func init() {
	if !cpu.X86.HasRDRAND {
		panic("rdrand: CPU does not support the RDRAND instruction")
	}
}

// step executes RDRAND once. ok reports the carry flag; when it is clear the
// hardware had no value ready and v must be ignored.
func step() (v uint64, ok bool)
