package domain

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
	Brand string `json:"brand" validate:"omitempty,brand"`
	Body  string `json:"message" validate:"required,max=5000"`
}

func (m *ContactMessage) Clean(c TextCleaner) error {
	m.Name = c.Text(m.Name)
	m.Phone = c.Text(m.Phone)
	m.Body = c.Text(m.Body)
	return nil
}

// Subscriber is a newsletter sign-up. Its record id is the lower-cased email.
type Subscriber struct {
	Email string `json:"email" validate:"required,email"`
}
