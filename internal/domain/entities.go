package domain

type QA struct {
	Question   string `json:"question" validate:"required,max=500"`
	Answer     string `json:"answer" validate:"required"` // Markdown
	AnswerHTML string `json:"answerHtml"`
}

func (q *QA) Clean(c TextCleaner) error {
	q.Question = c.Text(q.Question)
	html, err := c.Markdown(q.Answer)
	if err != nil {
		return err
	}
	q.AnswerHTML = html
	return nil
}

type VideoLink struct {
	Title string `json:"title" validate:"required,max=200"`
	URL   string `json:"url" validate:"required,url"`
}

func (v *VideoLink) Clean(c TextCleaner) error {
	v.Title = c.Text(v.Title)
	return nil
}

type Product struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Brand           string   `json:"brand" validate:"required,brand"`
	Description     string   `json:"description"` // Markdown
	DescriptionHTML string   `json:"descriptionHtml"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageURL        string   `json:"imageUrl" validate:"omitempty,url"`
	Features        []string `json:"features,omitempty" validate:"max=20,dive,max=200"`
}

func (p *Product) Clean(c TextCleaner) error {
	p.Name = c.Text(p.Name)
	for i := range p.Features {
		p.Features[i] = c.Text(p.Features[i])
	}
	html, err := c.Markdown(p.Description)
	if err != nil {
		return err
	}
	p.DescriptionHTML = html
	return nil
}

type Banner struct {
	Title    string `json:"title" validate:"required,max=200"`
	Subtitle string `json:"subtitle" validate:"max=500"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
	LinkURL  string `json:"linkUrl" validate:"omitempty,url"`
	Brand    string `json:"brand" validate:"omitempty,brand"`
	Active   bool   `json:"active"`
}

func (b *Banner) Clean(c TextCleaner) error {
	b.Title = c.Text(b.Title)
	b.Subtitle = c.Text(b.Subtitle)
	return nil
}

type Review struct {
	Author  string `json:"author" validate:"required,max=100"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
	Brand   string `json:"brand" validate:"omitempty,brand"`
}

func (r *Review) Clean(c TextCleaner) error {
	r.Author = c.Text(r.Author)
	r.Comment = c.Text(r.Comment)
	return nil
}

// Section is an admin-editable slot on a public page, addressed by Key (e.g. "home.hero").
type Section struct {
	Key      string `json:"key" validate:"required,max=100"`
	Title    string `json:"title" validate:"max=200"`
	Text     string `json:"text" validate:"max=5000"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

func (s *Section) Clean(c TextCleaner) error {
	s.Title = c.Text(s.Title)
	s.Text = c.Text(s.Text)
	return nil
}

type TeamMember struct {
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"max=100"`
	PhotoURL string `json:"photoUrl" validate:"omitempty,url"`
	Bio      string `json:"bio" validate:"max=2000"`
}

func (t *TeamMember) Clean(c TextCleaner) error {
	t.Name = c.Text(t.Name)
	t.Role = c.Text(t.Role)
	t.Bio = c.Text(t.Bio)
	return nil
}

type Milestone struct {
	Year        int    `json:"year" validate:"required,min=1900,max=2100"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (m *Milestone) Clean(c TextCleaner) error {
	m.Title = c.Text(m.Title)
	m.Description = c.Text(m.Description)
	return nil
}

type Stat struct {
	Label string `json:"label" validate:"required,max=100"`
	Value string `json:"value" validate:"required,max=50"`
}

func (s *Stat) Clean(c TextCleaner) error {
	s.Label = c.Text(s.Label)
	s.Value = c.Text(s.Value)
	return nil
}

type GalleryImage struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
	Caption  string `json:"caption" validate:"max=300"`
}

func (g *GalleryImage) Clean(c TextCleaner) error {
	g.Caption = c.Text(g.Caption)
	return nil
}
