package models

// NotificationDetails is the token/url pair the host client issues for
// sending push notifications to a user.
type NotificationDetails struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}
