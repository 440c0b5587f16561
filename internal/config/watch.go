package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// fileStamp identifies one version of a file on disk.
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

// WatchDirectory loads directory.yaml, hands it to onUpdate and then polls
// the file every interval until ctx is done. A changed file that fails to
// load or validate is logged and skipped; the previous seed stays in effect
// and the file is retried on the next change.
func WatchDirectory(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, onUpdate func(*DirectoryConfig)) error {
	if path == "" {
		path = "configs/directory.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "directory-watch").Str("path", path).Logger()
	}

	last, err := stampOf(path)
	if err != nil {
		return err
	}
	cfg, err := LoadDirectoryConfig(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(cfg)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			stamp, err := stampOf(path)
			if err != nil {
				l.Warn().Err(err).Msg("directory file unavailable")
				continue
			}
			if stamp == last {
				continue
			}
			last = stamp

			cfg, err := LoadDirectoryConfig(path)
			if err != nil {
				l.Error().Err(err).Msg("directory reload failed, keeping previous seed")
				continue
			}
			l.Info().Int("users", len(cfg.Users)).Int("roles", len(cfg.Roles)).Int("clients", len(cfg.Clients)).Msg("directory file changed")
			if onUpdate != nil {
				onUpdate(cfg)
			}
		}
	}()

	return nil
}
