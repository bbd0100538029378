package walk

import (
	"strconv"
	"strings"
)

// Header is the fixed first line of every output stream, written raw even
// when compression is enabled (see sink.writeHeader).
const Header = "inode,parent-inode,directory-depth,\"filename\",\"fileExtension\"," +
	"UID,GID,st_size,st_dev,st_blocks,st_nlink,\"st_mode\"," +
	"st_atime,st_mtime,st_ctime,pw_fcount,pw_dirsum\n"

// entrySentinelCount/entrySentinelSum are the aggregate sentinel pair used for EntryRecords:
// pw_fcount=-1, pw_dirsum=0.
const (
	entrySentinelCount = -1
	entrySentinelSum   = 0
)

// splitNameExt derives the filename and extension fields for path using the
// same byte-wise rule as the reference C implementation's strrchr-based
// split: the substring after the final '/' (or the whole path if there is
// none), and the substring after the final '.' in that filename provided
// the dot isn't the first character.
func splitNameExt(path string) (name, ext string) {
	name = path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	if name == "" {
		name = path
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		ext = name[i+1:]
	}
	return name, ext
}

// quoteField wraps s in double quotes, doubling any embedded double quote.
// No other escaping is performed.
func quoteField(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			dst = append(dst, '"', '"')
		} else {
			dst = append(dst, s[i])
		}
	}
	return append(dst, '"')
}

// appendRecord encodes one output line (EntryRecord or DirectorySummaryRecord,
// distinguished by fcount/dirsum) and appends it to dst, returning the
// grown slice. The line always ends with a single '\n'.
func appendRecord(dst []byte, path string, snap Snapshot, parentInode uint64, depth int, fcount int64, dirsum int64) []byte {
	name, ext := splitNameExt(path)

	dst = strconv.AppendUint(dst, snap.Inode, 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, parentInode, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(depth), 10)
	dst = append(dst, ',')
	dst = quoteField(dst, name)
	dst = append(dst, ',')
	dst = quoteField(dst, ext)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(snap.Uid), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(snap.Gid), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, snap.Size, 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, snap.Dev, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, snap.Blocks, 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, snap.Nlink, 10)
	dst = append(dst, ',')
	dst = append(dst, '"')
	dst = strconv.AppendUint(dst, uint64(snap.Mode), 8)
	dst = append(dst, '"')
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, snap.Atime, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, snap.Mtime, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, snap.Ctime, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, fcount, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, dirsum, 10)
	dst = append(dst, '\n')
	return dst
}
