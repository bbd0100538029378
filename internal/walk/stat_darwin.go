//go:build darwin

package walk

import (
	"os"
	"syscall"

	"golang.org/x/xerrors"
)

func snapshotFromFileInfo(fi os.FileInfo) (Snapshot, error) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return Snapshot{}, xerrors.Errorf("lstat %s: unsupported Sys() type %T", fi.Name(), fi.Sys())
	}
	return Snapshot{
		Inode:  st.Ino,
		Dev:    uint64(st.Dev),
		Nlink:  uint64(st.Nlink),
		Mode:   uint32(st.Mode),
		Uid:    st.Uid,
		Gid:    st.Gid,
		Size:   st.Size,
		Blocks: st.Blocks,
		Atime:  st.Atimespec.Sec,
		Mtime:  st.Mtimespec.Sec,
		Ctime:  st.Ctimespec.Sec,
	}, nil
}
