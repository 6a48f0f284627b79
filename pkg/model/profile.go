package model

// ContactProfile is the last-used booker identity, offered for reuse on the
// next booking.
type ContactProfile struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=10"`
}
