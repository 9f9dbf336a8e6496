//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package module

import (
	"time"

	"golang.org/x/sys/unix"
)

// modKeySafetyGap matches esbuild's own constant: a file modified within
// the last two seconds might still be being written, so don't trust its key.
const modKeySafetyGap = 2

func modKeyOf(path string) (ModKey, error) {
	stat := unix.Stat_t{}
	if err := unix.Stat(path, &stat); err != nil {
		return ModKey{}, err
	}

	if stat.Mtim.Sec == 0 && stat.Mtim.Nsec == 0 {
		return ModKey{}, errModKeyUnusable
	}

	now, err := unix.TimeToTimespec(time.Now())
	if err != nil {
		return ModKey{}, err
	}
	mtimeSec := stat.Mtim.Sec + modKeySafetyGap
	if mtimeSec > now.Sec || (mtimeSec == now.Sec && stat.Mtim.Nsec > now.Nsec) {
		return ModKey{}, errModKeyUnusable
	}

	return ModKey{
		dev:       uint64(stat.Dev),
		ino:       stat.Ino,
		size:      stat.Size,
		mtimeSec:  int64(stat.Mtim.Sec),
		mtimeNsec: int64(stat.Mtim.Nsec),
		mode:      uint32(stat.Mode),
	}, nil
}
