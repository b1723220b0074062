// Package core provides the foundational domain types and service
// interfaces used by FreightMesh. It defines:
//
//   - Negotiation (the persisted lifecycle record with its offer history)
//   - Status (the negotiation state machine's vocabulary)
//   - Pluggable service contracts: NegotiationStore, StrategyAdvisor,
//     Notifier and BookingInitiator
//   - The error taxonomy shared by all engine operations
//
// The package intentionally keeps implementation concerns (persistence,
// engine orchestration, model providers) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
