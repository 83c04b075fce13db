package models

// Label лейбл в бегущей строке на главной
type Label struct {
	Name          string `json:"name"`
	LogoURL       string `json:"logo_url"`
	IsSupportLine bool   `json:"is_support_line"`
	Order         *int   `json:"order"`
}

type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	IsCTA bool   `json:"is_cta"`
	Order *int   `json:"order"`
}

type SiteLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Order *int   `json:"order"`
}

// TextBlocks ключ блока -> сырой текст, абзацы разделены пустой строкой
type TextBlocks map[string]string
