package domain

import "errors"

var (
	// ErrUpstreamCall marks a failed or timed out call to the LLM, TTS, transcoder or hosted model
	ErrUpstreamCall = errors.New("upstream call failed")
	// ErrMalformedUpstreamOutput marks model output that is not the expected JSON shape
	ErrMalformedUpstreamOutput = errors.New("malformed upstream output")
	// ErrArtifactIO marks a failure reading or writing a transient or static file
	ErrArtifactIO = errors.New("artifact io failed")
	// ErrProviderNotConfigured is returned by optional providers started without credentials
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// Route is the path the orchestrator picked for a request
type Route string

const (
	RouteInputMissing       Route = "input_missing"
	RouteCredentialsMissing Route = "credentials_missing"
	RouteLive               Route = "live"
)
