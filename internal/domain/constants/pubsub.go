// Package constants holds provider names shared by config and infrastructure.
package constants

// Event transport providers selectable through pubsub.provider.
const (
	PubSubProviderGoogle = "google"
	PubSubProviderKafka  = "kafka"
	PubSubProviderLocal  = "local"
)

// Mail providers selectable through mail.provider.
const (
	MailProviderSMTP = "smtp"
	MailProviderLog  = "log"
)
