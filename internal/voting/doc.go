// Package voting holds the forum's vote and acceptance rules.
//
// The Resolver decides and applies a user's vote on a question or answer, the
// AcceptanceManager keeps at most one accepted answer per question, and the
// Projector derives the read-only fields the client renders. All writes go
// through Store.InTx so the vote ledger and the cached score commit together.
package voting
