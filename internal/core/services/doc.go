// Package services implements the driving port interfaces.
// Services contain the client's behaviour and orchestrate calls to
// driven ports (adapters).
//
// ChatService streams answers into the thread store while a
// ProgressSimulator animates the wait. UploadService sends files one at
// a time with bounded retries. The remaining services are thin wrappers
// that keep the local store or cache in step with the notes service.
package services
