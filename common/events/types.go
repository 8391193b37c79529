package events

import "time"

const (
	// Streams
	CounterEventsStream      = "COUNTER_EVENTS"
	NotificationEventsStream = "NOTIFICATION_EVENTS"

	// Events
	LeaderboardUpdated     = "events.leaderboard.updated"
	CounterSignatureIssued = "events.counter.signatureIssued"
	GiftBoxClaimed         = "events.giftbox.claimed"
	GameScoreSaved         = "events.game.scoreSaved"
	MiniAppWebhookReceived = "events.notification.webhookReceived"

	// Event Wildcards
	LeaderboardEventsWildcard  = "events.leaderboard.*"
	CounterEventsWildcard      = "events.counter.*"
	GiftBoxEventsWildcard      = "events.giftbox.*"
	GameEventsWildcard         = "events.game.*"
	NotificationEventsWildcard = "events.notification.*"

	StreamRetention = 72 * time.Hour
)

// CounterStreamSubjects lists every subject stored in CounterEventsStream.
func CounterStreamSubjects() []string {
	return []string{
		LeaderboardEventsWildcard,
		CounterEventsWildcard,
		GiftBoxEventsWildcard,
		GameEventsWildcard,
	}
}
