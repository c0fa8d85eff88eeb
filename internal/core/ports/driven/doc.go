// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SessionProvider: Supplies and refreshes the bearer token
//   - Gateway: Authenticated HTTP transport to the notes service
//   - NotesAPI: Typed endpoints of the notes service
//   - ThreadStore: In-memory thread and message state
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - UploadHistoryStore: Local ledger of upload outcomes
//   - Authenticator: Interactive login and logout
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
