package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupOptions configure periodic database file backups.
type BackupOptions struct {
	Dir           string
	Interval      time.Duration
	RetentionDays int
}

// Backup copies the SQLite file to a timestamped location on an
// interval and prunes copies older than the retention window.
type Backup struct {
	dbPath string
	opts   BackupOptions
	logger *zerolog.Logger
}

// NewBackup creates a backup runner for the database at dbPath.
func NewBackup(dbPath string, opts BackupOptions, logger *zerolog.Logger) *Backup {
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	return &Backup{dbPath: dbPath, opts: opts, logger: logger}
}

// Start runs the backup loop until ctx is cancelled. The first backup
// runs immediately.
func (b *Backup) Start(ctx context.Context) {
	b.logger.Info().
		Str("dir", b.opts.Dir).
		Dur("interval", b.opts.Interval).
		Msg("backup runner started")

	ticker := time.NewTicker(b.opts.Interval)
	defer ticker.Stop()

	if err := b.Run(); err != nil {
		b.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Run(); err != nil {
				b.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			b.prune()
		}
	}
}

// Run performs one backup copy.
func (b *Backup) Run() error {
	if err := os.MkdirAll(b.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	path := filepath.Join(b.opts.Dir, name)

	source, err := os.Open(b.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer source.Close()

	dest, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		return fmt.Errorf("copy database: %w", err)
	}

	b.logger.Info().Str("path", path).Msg("backup written")
	return nil
}

func (b *Backup) prune() {
	if b.opts.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(b.opts.Dir)
	if err != nil {
		b.logger.Error().Err(err).Msg("could not read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -b.opts.RetentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			b.logger.Info().Str("file", file.Name()).Msg("deleting expired backup")
			os.Remove(filepath.Join(b.opts.Dir, file.Name()))
		}
	}
}
