package models

// Lead заявка на букинг или контакт
type Lead struct {
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Type    string `json:"type" form:"type" validate:"required,max=100"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}

// LeadReceipt таблица, принявшая заявку
type LeadReceipt struct {
	Table string `json:"table"`
}
