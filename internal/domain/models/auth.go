package models

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type TokenMeta struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Admin учетная запись администратора сайта из конфигурации
type Admin struct {
	Username     string
	PasswordHash []byte
}
