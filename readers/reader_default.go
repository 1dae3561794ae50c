//go:build !windows

package readers

import "fmt"

func newDeviceReader(pathToDisk string) (DiskReader, error) {
	return nil, fmt.Errorf("%w: cannot open %q", ErrDeviceUnsupported, pathToDisk)
}
