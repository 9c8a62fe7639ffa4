// Package parallel provides a bounded worker pool.
//
// WorkerPool runs submitted jobs with at most maxWorkers in flight and
// collects a Result for each job. The notification dispatcher uses it to
// deliver several due reminders at once without one slow notifier command
// holding up the rest.
package parallel
