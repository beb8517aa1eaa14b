/*
Package stateline resolves prerequisite chains between declared application
statuses and orchestrates the actions needed to reach a target status.

Application behavior is modeled as a graph of named statuses, each reachable
only after satisfying declared prerequisites: prior statuses, data fields,
and platform-specific setup actions. Given a target status, the engine
inspects the persisted test data and either confirms readiness or executes
the chain of prior actions required to get there, including actions that
must run on a different execution platform than the one driving the test.

The high-level entry point is Engine:

	eng, err := stateline.New("./statuses",
		stateline.WithPlatform("web"),
		stateline.WithRegistryPath("./statuses/registry.json"),
		stateline.WithActionInvoker(invoker),
	)
	result, err := eng.Resolve(ctx, stateline.Request{
		Target:   "booked",
		DataPath: "testdata/member.json",
	})

Descriptor sources, persistence, subprocess execution, prompting and
locking are all pluggable through the interfaces in pkg/ports.
*/
package stateline
