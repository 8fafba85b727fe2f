//go:build !linux

package hwinfo

import "runtime"

func machine() string {
	return runtime.GOARCH
}
