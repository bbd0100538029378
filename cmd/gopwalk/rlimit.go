package main

import "golang.org/x/sys/unix"

// bumpRlimitNOFILE raises the process's open-file limit to its hard max
// before any walk starts: a wide -roots fan-out, each with its own output
// file and its own worker pool, can otherwise hit the default 1024 limit
// well before any single walk would.
func bumpRlimitNOFILE() error {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return err
	}
	rl.Cur = rl.Max
	return unix.Setrlimit(unix.RLIMIT_NOFILE, &rl)
}
