package module

import "errors"

// ModKey fingerprints a source file's on-disk identity so the loader can
// tell whether two import paths that resolve to the same inode (symlinks,
// relative-path aliasing) refer to the same module rather than parsing it
// twice under two names.
type ModKey struct {
	dev, ino  uint64
	size      int64
	mtimeSec  int64
	mtimeNsec int64
	mode      uint32
}

var errModKeyUnusable = errors.New("modkey: unusable modification time")

func (k ModKey) isZero() bool { return k == ModKey{} }
