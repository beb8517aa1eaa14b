/*
Package domain contains the core value types of the stateline engine.

A status graph is described by Descriptors: one per reachable status, each
declaring the data it requires, the setup actions that can reach it, and the
outgoing transitions to other statuses. The resolver turns a target status
into a Chain of ChainSteps; the orchestrator executes the incomplete ones.

Persisted test data follows a delta model: an original snapshot plus an
ordered change log. The effective state is a pure fold of the log onto the
original (see Record.Snapshot).
*/
package domain
