// Package scheduler runs the daily refresh job (fetch all sources and
// regenerate reports) on a cron schedule.
package scheduler
