package models

type ContactMessageRequest struct {
	Name    string `json:"name"            validate:"required,max=100"`
	Phone   string `json:"phone"           validate:"required,max=20"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Message string `json:"message"         validate:"required"`
}
