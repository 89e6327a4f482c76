// Package constants holds small string enums shared across infra adapters
// that don't warrant their own domain entity.
package constants

// PubSubProvider names a supported event-publishing backend for
// config.PubSubConfig.Provider.
type PubSubProvider string

const (
	// PubSubProviderLocal pushes dispatch events over HTTP to a local
	// development endpoint, simulating Pub/Sub's push-subscription format.
	PubSubProviderLocal PubSubProvider = "local"

	// PubSubProviderGoogle publishes dispatch events to Google Cloud Pub/Sub.
	PubSubProviderGoogle PubSubProvider = "google"
)
