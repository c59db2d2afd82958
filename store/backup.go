package store

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// BackupScheduler snapshots the database file on a cron schedule. The flat
// file is the only persistent state the service has, so a periodic copy is
// the whole backup story.
type BackupScheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

func NewBackupScheduler(s *Store, spec string, logger *logrus.Logger) (*BackupScheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		dst := fmt.Sprintf("%s.bak-%s", s.Path(), time.Now().UTC().Format("20060102T150405"))
		if err := s.Snapshot(dst); err != nil {
			logger.Errorf("Database backup failed: %v", err)
			return
		}
		logger.Infof("Database backed up to %s", dst)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return &BackupScheduler{cron: c, logger: logger}, nil
}

func (b *BackupScheduler) Start() {
	b.cron.Start()
}

func (b *BackupScheduler) Stop() {
	b.cron.Stop()
}
