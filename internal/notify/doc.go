// Package notify schedules and delivers local task reminders.
//
// A Center keeps pending reminders as one JSON array under the
// "notifications" key of a kv.Store, so one process can schedule a reminder
// and another (the TUI or "taskpad remind") can fire it. Reminders fire once,
// at minute granularity, through a Deliverer:
//
//   - CommandDeliverer runs an external notifier such as notify-send
//   - LogDeliverer writes the reminder to a logger
//   - DelivererFunc adapts a plain function
//   - Tee fans out to several deliverers
//
// Nothing is delivered until RequestAuthorization has confirmed that
// notifications are enabled and a deliverer is usable.
package notify
