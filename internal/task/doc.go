// Package task defines the task entity and the stored task blob format.
//
// A task collection is stored as a single JSON array:
//
//	[
//	  {
//	    "id": "9b2f3c1e-5a0d-4f63-9a43-2f1d5c7e8a10",
//	    "title": "Buy milk",
//	    "isCompleted": false,
//	    "createdAt": "2024-01-01T09:30:00Z",
//	    "category": "shopping",
//	    "priority": 0,
//	    "dueDate": "2024-01-02T18:00:00Z",
//	    "notes": "Optional notes",
//	    "reminderEnabled": true
//	  }
//	]
//
// # Categories
//
// Categories are stored by their canonical label:
//
//   - "home"
//   - "work"
//   - "school"
//   - "personal" (default)
//   - "shopping"
//
// # Priorities
//
// Priorities are stored by their integer rank:
//
//   - 0: low
//   - 1: medium (default)
//   - 2: high
//
// # Validation
//
// Decode validates the blob against an embedded JSON Schema (draft 2020-12)
// before unmarshaling. Extra fields are tolerated; missing required fields,
// wrong types and values outside the enumerations are rejected. There is no
// schema version: a payload that does not validate is unusable as a whole.
package task
