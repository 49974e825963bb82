package stats

/*
This file defines all the metrics being collected.   As new metrics are added please follow this pattern.
*/

const (
	/****************************** Scheduler metrics *********************************/
	/*
		number of tests waiting to be consumed
	*/
	SchedPendingTestsGauge = "pendingTestsGauge"

	/*
		number of tests whose requirement exceeds the cluster, fixed at construction
	*/
	SchedUnschedulableTestsGauge = "unschedulableTestsGauge"

	/*
		number of tests handed out by Consume
	*/
	SchedConsumedCounter = "consumedCounter"

	/*
		number of Consume calls that found pending tests but none that fit
	*/
	SchedStalledCounter = "stalledCounter"

	/*
		number of Consume calls made after all pending tests were handed out
	*/
	SchedExhaustedCounter = "exhaustedCounter"

	/*
		time spent scanning for the next test in Consume
	*/
	SchedConsumeLatency_ms = "consumeLatency_ms"

	/****************************** Driver metrics *********************************/
	/*
		number of tests started
	*/
	DriverLaunchedCounter = "launchedCounter"

	/*
		number of tests that finished without error
	*/
	DriverPassedCounter = "passedCounter"

	/*
		number of tests that finished with an error or could not be run
	*/
	DriverFailedCounter = "failedCounter"

	/*
		number of tests skipped because they are marked ignore
	*/
	DriverIgnoredCounter = "ignoredCounter"

	/*
		number of tests currently running
	*/
	DriverRunningGauge = "runningGauge"

	/*
		free nodes in the cluster, sampled after every launch and completion
	*/
	DriverAvailableNodesGauge = "availableNodesGauge"

	/*
		number of times the driver had to wait for an external release with nothing running
	*/
	DriverStallWaitCounter = "stallWaitCounter"

	/*
		wall time of a single test, from launch to completion
	*/
	DriverTestLatency_ms = "testLatency_ms"
)
