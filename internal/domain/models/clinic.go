package models

// Clinic предложение клиники (обучение, мастер-класс)
type Clinic struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
	Price       string   `json:"price"`
	CTALabel    string   `json:"cta_label"`
	CTAURL      string   `json:"cta_url"`
	Order       *int     `json:"order"`
}
