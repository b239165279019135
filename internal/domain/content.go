package domain

import (
	"encoding/json"
	"time"
)

// Kind discriminates the entities kept in the content store.
type Kind string

// CMS-editable kinds.
const (
	KindQA           Kind = "qa"
	KindVideoLink    Kind = "videoLink"
	KindProduct      Kind = "product"
	KindBanner       Kind = "banner"
	KindReview       Kind = "review"
	KindSection      Kind = "section"
	KindTeamMember   Kind = "teamMember"
	KindMilestone    Kind = "milestone"
	KindStat         Kind = "stat"
	KindGalleryImage Kind = "galleryImage"
)

// Kinds written only through the public forms.
const (
	KindMessage    Kind = "message"
	KindSubscriber Kind = "subscriber"
)

// ContentRecord is the storage envelope for every content entity.
// PK: kind, SK: id. Data holds the typed entity as JSON.
type ContentRecord struct {
	Kind      Kind            `json:"kind" dynamodbav:"kind"`
	ID        string          `json:"id" dynamodbav:"id"`
	Order     int             `json:"order" dynamodbav:"order"`
	Data      json.RawMessage `json:"data" dynamodbav:"data"`
	CreatedAt time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time       `json:"updated" dynamodbav:"updated_at"`
}

// TextCleaner strips markup from plain-text fields and renders Markdown fields to safe HTML.
type TextCleaner interface {
	Text(s string) string
	Markdown(s string) (string, error)
}

// Entity is a typed content payload. Clean normalizes user-supplied text in place.
type Entity interface {
	Clean(c TextCleaner) error
}
