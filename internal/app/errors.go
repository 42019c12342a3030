package app

import "errors"

// CanvasFailedAlert is shown when a session could not be turned into a canvas.
const CanvasFailedAlert = "This Gem was unable to create its Connection Canvas. Returning to the Cosmic Canvas."

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrGemNotFound          = errors.New("gem not found")
	ErrKnowledgeNotFound    = errors.New("knowledge base not found")
	ErrMessageEmpty         = errors.New("message content is empty")
	ErrReplyInFlight        = errors.New("a reply is already in flight")
	ErrSessionEnded         = errors.New("session has ended")
	ErrSessionNotFound      = errors.New("session not found")
	ErrCanvasBusy           = errors.New("another canvas is being generated or reviewed")
	ErrCanvasFailed         = errors.New(CanvasFailedAlert)
	ErrNoPendingCanvas      = errors.New("no matching canvas under review")
	ErrNotConfirmed         = errors.New("action was not confirmed")
	ErrGatewayNotConfigured = errors.New("Gemini API key is not set. Please configure GEMINI_API_KEY to use the application.")
	ErrInvalidCredential    = errors.New("invalid username or password")
)
