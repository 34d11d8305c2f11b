package pagevolume

import (
	"fmt"
	"hash/fnv"
	"path/filepath"

	"github.com/jbstore/jbstore/pkg/fs"
)

// interprocessLockName derives the stable name used to guard concurrent
// opens of absPath: an fnv-1a hash of the absolute path, formatted as a
// short hex tag so the lock file name stays constant across opens of the
// same file regardless of how the path was spelled.
func interprocessLockName(absPath string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(absPath))
	return fmt.Sprintf("jb_%x", h.Sum64())
}

// acquireInterprocessLock takes the named, non-blocking guard for absPath.
// It fails with AlreadyInUse if another holder (in this process or
// another) already owns it, matching PF.open's contract.
func acquireInterprocessLock(fsys fs.FS, absPath string) (fs.Locker, error) {
	name := interprocessLockName(absPath)
	lockPath := filepath.Join(filepath.Dir(absPath), "."+name+".lock")

	locker, err := fsys.TryLock(lockPath)
	if err != nil {
		if err == fs.ErrWouldBlock {
			return nil, wrapKind(ErrBusyError, AlreadyInUse, "storage file %s is already in use", absPath)
		}
		return nil, wrapKind(ErrOpenError, UnknownError, "acquire interprocess lock for %s: %v", absPath, err)
	}

	return locker, nil
}
