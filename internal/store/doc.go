// Package store owns the task collection and every operation on it.
//
// A Store holds the ordered collection, an optional category filter and a
// sort option. The filtered view is derived on demand. Operations that take
// positions address that view as it was when the call was made; positions
// are resolved to task IDs before the collection is touched.
//
// Every mutation persists the full collection through a Persister and
// schedules or cancels reminders through a Notifier. Failures of either are
// logged at warn level and otherwise ignored, so no operation returns an
// error. A Store is not safe for concurrent use; it belongs to the goroutine
// that drives the UI or the CLI command.
package store
