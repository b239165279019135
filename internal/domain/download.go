package domain

import "time"

// DownloadRequest is a one-time PIN that unlocks the gated asset.
// ExpiresAt is a Unix timestamp (seconds); it doubles as the DynamoDB TTL attribute.
type DownloadRequest struct {
	ID        string    `json:"id" dynamodbav:"id"`
	PIN       string    `json:"pin" dynamodbav:"pin"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	Used      bool      `json:"used" dynamodbav:"used"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

// Active reports whether the request can still be redeemed at now.
func (d *DownloadRequest) Active(now time.Time) bool {
	return !d.Used && d.ExpiresAt > now.Unix()
}

// Stale reports whether cleanup may delete the request at now.
func (d *DownloadRequest) Stale(now time.Time) bool {
	return d.Used || d.ExpiresAt < now.Unix()
}
