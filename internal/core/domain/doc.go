// Package domain defines the core entities of the notely client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ChatThread and Message: the conversation model
//   - StreamFrame and ChatPhase: the decoded chat stream and its stages
//   - UploadProgress, FileUploadResult and BatchSummary: the upload pipeline
//   - The error taxonomy shared by every adapter
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
