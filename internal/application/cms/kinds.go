package cms

import "github.com/multibrand-site/internal/domain"

// kindSpec describes how one content type is built and stored.
type kindSpec struct {
	newEntity func() domain.Entity
	orderable bool
	// naturalID, when set, derives the record id from the entity instead of a ULID.
	naturalID func(domain.Entity) string
}

var kinds = map[domain.Kind]kindSpec{
	domain.KindQA:           {newEntity: func() domain.Entity { return &domain.QA{} }},
	domain.KindVideoLink:    {newEntity: func() domain.Entity { return &domain.VideoLink{} }, orderable: true},
	domain.KindProduct:      {newEntity: func() domain.Entity { return &domain.Product{} }},
	domain.KindBanner:       {newEntity: func() domain.Entity { return &domain.Banner{} }},
	domain.KindReview:       {newEntity: func() domain.Entity { return &domain.Review{} }},
	domain.KindSection:      {newEntity: func() domain.Entity { return &domain.Section{} }, naturalID: sectionKey},
	domain.KindTeamMember:   {newEntity: func() domain.Entity { return &domain.TeamMember{} }, orderable: true},
	domain.KindMilestone:    {newEntity: func() domain.Entity { return &domain.Milestone{} }},
	domain.KindStat:         {newEntity: func() domain.Entity { return &domain.Stat{} }},
	domain.KindGalleryImage: {newEntity: func() domain.Entity { return &domain.GalleryImage{} }, orderable: true},
}

func sectionKey(e domain.Entity) string {
	return e.(*domain.Section).Key
}

// Supported reports whether kind is editable through the CMS.
func Supported(kind domain.Kind) bool {
	_, ok := kinds[kind]
	return ok
}
