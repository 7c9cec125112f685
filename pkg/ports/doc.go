/*
Package ports defines the driven ports (interfaces) for the sensact engine.

These interfaces decouple the rule engine and the path resolver from the
application under test, the rule-set storage and the run persistence layer.

# Key Interfaces

  - Element: A live, queryable node of the UI tree under test.
  - Sensor / Actor: Evaluate condition records and execute action records.
  - RuleLoader: Retrieves raw rule-set documents (e.g., from Loam, a directory or memory).
  - SnapshotStore: Persists the outcome of top-level runs.
  - DistributedLocker: Serializes runs driving the same application.
*/
package ports
