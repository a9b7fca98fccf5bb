package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/models"
)

// ErrNothingToBackup is returned when the cache holds no snapshot yet.
var ErrNothingToBackup = errors.New("no cached snapshot to back up")

// Snapshotter is the cache surface backups read from and restore into.
type Snapshotter interface {
	Raw() ([]byte, bool, error)
	Replace(data []byte) (models.AppState, error)
}

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager writes timestamped JSON copies of the cached snapshot.
type Manager struct {
	source    Snapshotter
	backupDir string
	now       func() time.Time
}

// NewManager keeps backups in <configDir>/backups.
func NewManager(source Snapshotter, configDir string) *Manager {
	return &Manager{
		source:    source,
		backupDir: filepath.Join(configDir, constants.BackupDirName),
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes the current snapshot and rotates old backups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

func (m *Manager) createBackup(skipRotation bool) (string, error) {
	data, ok, err := m.source.Raw()
	if err != nil {
		return "", fmt.Errorf("failed to read cache: %w", err)
	}
	if !ok {
		return "", ErrNothingToBackup
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// Rotate old backups (unless this is part of a restore operation)
	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("failed to rotate old backups", "error", err)
		}
	}

	return backupPath, nil
}

// nextPath returns an unused backup filename, adding a counter when several
// backups land in the same second.
func (m *Manager) nextPath() (string, error) {
	timestamp := m.now().Format(constants.BackupTimestampFormat)
	backupPath := filepath.Join(m.backupDir, constants.BackupFilePrefix+timestamp+constants.BackupFileSuffix)

	for counter := 1; ; counter++ {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			return backupPath, nil
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		name := fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, timestamp, counter, constants.BackupFileSuffix)
		backupPath = filepath.Join(m.backupDir, name)
	}
}

// parseName extracts the timestamp and counter from a backup filename.
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	counter := 0
	if parts := strings.Split(stamp, "-"); len(parts) == 3 {
		if _, err := fmt.Sscanf(parts[2], "%d", &counter); err != nil {
			return time.Time{}, 0, false
		}
		stamp = parts[0] + "-" + parts[1]
	}

	ts, err := time.ParseInLocation(constants.BackupTimestampFormat, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, counter, true
}

// ListBackups returns all backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type entryInfo struct {
		BackupInfo
		counter int
	}
	var found []entryInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, counter, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, entryInfo{
			BackupInfo: BackupInfo{Path: filepath.Join(m.backupDir, entry.Name()), Timestamp: ts, Size: info.Size()},
			counter:    counter,
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].Timestamp.Equal(found[j].Timestamp) {
			return found[i].Timestamp.After(found[j].Timestamp)
		}
		return found[i].counter > found[j].counter
	})

	backups := make([]BackupInfo, len(found))
	for i, f := range found {
		backups[i] = f.BackupInfo
	}
	return backups, nil
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// ResolvePath finds a backup given as an absolute path, a path relative to
// the working directory, or a bare filename inside the backup directory.
func (m *Manager) ResolvePath(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		return filepath.Abs(name)
	}
	candidate := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", m.backupDir)
}

// RestoreBackup validates the backup, saves the current snapshot as a new
// backup and writes the restored one to the cache.
func (m *Manager) RestoreBackup(backupPath string) (models.AppState, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to read backup: %w", err)
	}
	if !json.Valid(data) {
		return models.AppState{}, fmt.Errorf("backup file is corrupted or invalid: %s", backupPath)
	}

	current, err := m.createBackup(true)
	switch {
	case errors.Is(err, ErrNothingToBackup):
	case err != nil:
		return models.AppState{}, fmt.Errorf("failed to backup current snapshot before restore: %w", err)
	default:
		logger.Info("backed up current snapshot before restore", "path", current)
	}

	state, err := m.source.Replace(data)
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return state, nil
}
