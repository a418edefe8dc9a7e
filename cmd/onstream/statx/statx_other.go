//go:build !linux

package statx

import "os"

// Stat reports ApparentSize only; this platform has no portable way to
// ask how many of those bytes are actually allocated, so AllocatedBytes
// is reported equal to it (never sparse).
func Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{ApparentSize: fi.Size(), AllocatedBytes: fi.Size()}, nil
}
