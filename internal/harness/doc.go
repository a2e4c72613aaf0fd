// Package harness provides scenario-driven conformance testing for the
// context store.
//
// Scenarios are defined in YAML files:
//
//	name: status_handoff
//	description: "Status lands in the store and the audit trail"
//	document: documents/story_2.md
//	steps:
//	  - set: { key: status, value: complete }
//	  - update: { owner: platform, sprint: 14 }
//	assertions:
//	  - type: snapshot_contains
//	    key: status
//	    value: complete
//	  - type: log_count
//	    count: 3
//	  - type: last_entry
//	    action: bulk_updated
//	    keys: [owner, sprint]
//
// # Assertion Types
//
//   - snapshot_contains: a key holds the expected value in the final snapshot
//   - log_count: the audit trail has exactly N entries (the load entry counts)
//   - last_entry: the final audit entry has the expected action and keys
//
// # Deterministic Testing
//
// Scenarios run with a frozen wall clock (testutil.FrozenTime), and golden
// snapshots serialize through the store's deterministic marshaler with
// timestamps and sizes excluded, so runs are byte-identical and suitable for
// golden file comparison.
package harness
