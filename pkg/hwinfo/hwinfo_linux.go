//go:build linux

package hwinfo

import "golang.org/x/sys/unix"

// machine returns the kernel's machine name (armv6l, aarch64, x86_64, ...).
func machine() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "unknown"
	}
	return unix.ByteSliceToString(u.Machine[:])
}
