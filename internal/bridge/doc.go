// Package bridge contains the reconciliation engine and event loop that
// keep Home Assistant MQTT discovery state in sync with a PowerView-style
// hub.
//
// The package has four moving parts:
//
//   - StateView: an atomically swapped snapshot of the tracked hub (client
//     handle, identity, reachability). Swapped only by the event loop,
//     read by everything else.
//   - BuildRegistration / RegistrationBatch: a pure builder that turns the
//     hub inventory into three ordered phases of MQTT operations (deletes,
//     discovery configs, availability/state updates) plus the inter-phase
//     delays the discovery consumer needs, and an Apply that enforces the
//     phase order.
//   - Server: the single-consumer event loop. Four producers feed one
//     bounded channel (inbound MQTT messages, hub-pushed motion batches,
//     reconcile ticks, hub rediscovery); the consumer dispatches commands
//     through the topic router, runs reconciliation passes, and normalizes
//     motion batches into state publishes.
//   - Command execution: the fixed command-token vocabulary accepted on
//     shade command topics, mapped onto hub motion primitives.
//
// All publishing and all StateView swaps happen on the consumer goroutine,
// so reconciliation needs no locks.
package bridge
