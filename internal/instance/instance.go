// Package instance keeps two interactive pocket sessions from writing the
// same database at once.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/logger"
)

// ErrAlreadyRunning is returned when a live pocket process holds the lock.
var ErrAlreadyRunning = errors.New("another pocket session is already running")

var (
	findProcessFunc = ps.FindProcess
	getpid          = os.Getpid
)

// Lock is a held lockfile. The file contains "pid|purpose".
type Lock struct {
	path string
	pid  int
}

// Path returns the lockfile location.
func (l *Lock) Path() string { return l.path }

// Holder describes the process recorded in a lockfile.
type Holder struct {
	PID     int
	Purpose string
}

// Acquire takes the lock in dir for purpose ("tui", "serve"). A lockfile left
// behind by a dead or unrelated process is replaced.
func Acquire(dir, purpose string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, constants.LockFileName)

	if holder, err := Check(dir); err == nil {
		return nil, fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, holder.PID, holder.Purpose)
	}

	pid := getpid()
	content := fmt.Sprintf("%d|%s", pid, purpose)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	logger.Debug("Acquired instance lock", "path", path, "pid", pid)
	return &Lock{path: path, pid: pid}, nil
}

// Release removes the lockfile if it still belongs to this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	holder, err := parse(content)
	if err != nil || holder.PID != l.pid {
		return nil
	}
	return os.Remove(l.path)
}

// Check returns the live holder of the lock in dir, or an error when the lock
// is free, malformed or stale.
func Check(dir string) (Holder, error) {
	content, err := os.ReadFile(filepath.Join(dir, constants.LockFileName))
	if err != nil {
		return Holder{}, errors.New("no lockfile")
	}
	holder, err := parse(content)
	if err != nil {
		return Holder{}, err
	}

	process, err := findProcessFunc(holder.PID)
	if err != nil || process == nil {
		return Holder{}, errors.New("lock holder is not running")
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return Holder{}, fmt.Errorf("process with PID %d is not %s (is %s)", holder.PID, constants.AppName, process.Executable())
	}
	return holder, nil
}

func parse(content []byte) (Holder, error) {
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return Holder{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return Holder{}, errors.New("invalid process ID in lockfile")
	}
	return Holder{PID: pid, Purpose: parts[1]}, nil
}
