/*
Package session coordinates runs against applications under test.

A UI is single-threaded: two runs driving the same application must never
interleave. The Manager serializes runs per target with reference-counted
local locks, optionally backed by a ports.DistributedLocker for runs issued
from several processes, and persists the resulting snapshots.
*/
package session
