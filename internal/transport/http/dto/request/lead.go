package request

import "mpsite/internal/domain/models"

// LeadRequest заявка из формы букинга. Обязательность полей проверяет
// сервис букинга, чтобы форма и JSON получали одинаковые тексты ошибок.
type LeadRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Type    string `json:"type" form:"type"`
	Message string `json:"message" form:"message"`
}

func (r LeadRequest) ToModel() models.Lead {
	return models.Lead{
		Name:    r.Name,
		Email:   r.Email,
		Type:    r.Type,
		Message: r.Message,
	}
}
