package telegraph

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func NextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// RunDigest sends a session digest on the given cron schedule until ctx is
// cancelled. An unparseable expression disables the digest.
func RunDigest(ctx context.Context, db *gorm.DB, a Announcer, expr string) {
	for {
		d := NextCronDuration(expr)
		if d == 0 {
			log.Printf("telegraph: digest disabled: bad cron expression %q", expr)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
		}

		ev, err := Digest(db)
		if err != nil {
			log.Printf("telegraph: digest: %v", err)
			continue
		}
		a.Announce(ctx, ev)
	}
}
