/*
package scheduler provides Scheduler, which decides which test of a session runs next.

* Concepts *
ExpectedNumNodes:
  How many cluster nodes a test consumes while it runs, see sched.TestContext.

Unschedulable:
  Tests whose ExpectedNumNodes exceeds the cluster's total nodes. They can never run, so they are
  split off once at construction and never offered.

Pending:
  All other tests, sorted largest first. The sort is stable: tests of equal size keep the order in
  which they were given to NewScheduler.

* Logic *
Peek:
  Walk Pending front to back and return the first test with ExpectedNumNodes <= AvailableNodes.
  Since Pending is sorted, that's the largest test that fits right now. This is greedy, not an
  optimal packing.

Consume:
  No pending tests                    -> ErrExhausted, the caller is done.
  Pending tests but none fits (Peek)  -> ErrStalled, wait for nodes to be released.
  Otherwise remove the Peek result from Pending and return it.

Availability is read from the ClusterView on every call and never cached, so the caller must have
published any allocation or release before calling again. A Scheduler is meant for a single
goroutine and does no locking of its own.
*/
package scheduler
