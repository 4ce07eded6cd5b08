package bot

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// digestParser accepts standard 5-field cron expressions
// (minute hour dom month dow).
var digestParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration returns how long to wait until the cron expression next
// fires.
func nextCronDuration(expr string) (time.Duration, error) {
	sched, err := digestParser.Parse(expr)
	if err != nil {
		return 0, fmt.Errorf("bot: parse cron %q: %w", expr, err)
	}
	return time.Until(sched.Next(time.Now())), nil
}
