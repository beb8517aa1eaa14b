/*
Package ports defines the driven ports (interfaces) of the stateline engine.

These interfaces decouple the resolver and orchestrator from external
implementations: descriptor sources, test-data persistence, action
invocation, subprocess runners, interactive prompts and locking.

# Key interfaces

  - DescriptorRepository: resolves status class names to Descriptors.
  - DataStore: loads and saves delta-model test data records.
  - ActionInvoker: runs a setup action in the live session.
  - ProcessRunner: spawns a platform test runner as a subprocess.
  - Prompt: timed, cancellable human confirmation.
  - DistributedLocker: keeps the delta file single-writer across runners.
*/
package ports
