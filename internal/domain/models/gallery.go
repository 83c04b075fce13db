package models

import "regexp"

var imageURLPattern = regexp.MustCompile(`(?i)\.(png|jpe?g|webp|gif|svg)(\?|#|$)`)

// IsImageURL проверяет расширение файла изображения в URL
func IsImageURL(url string) bool {
	return imageURLPattern.MatchString(url)
}

// PresskitAsset файл пресс-кита: фото или архив для скачивания
type PresskitAsset struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Alt   string `json:"alt"`
	Order *int   `json:"order"`
}

func (a PresskitAsset) IsPhoto() bool {
	return IsImageURL(a.URL)
}
