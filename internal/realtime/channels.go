// Package realtime defines the publisher port used to fan events out to
// browsers, plus the channel naming convention shared with the frontend.
package realtime

import "fmt"

// Channel names consumed by frontend subscriptions. Changing these breaks
// deployed clients.
func AlertChannel(userID string) string {
	return fmt.Sprintf("alerts:%s", userID)
}

func ConversationChannel(conversationID string) string {
	return fmt.Sprintf("conv:%s", conversationID)
}

func ConversationListChannel(userID string) string {
	return fmt.Sprintf("conv-list:%s", userID)
}

// Event names published on the channels above.
const (
	EventMatchFound      = "match:found"
	EventNotificationNew = "notification:new"
	EventMessageNew      = "message:new"
)
