package services

import (
	"errors"
	"strings"

	"mpsite/internal/backend"
)

// Маркеры отсутствующей таблицы/view, сравниваются без учета регистра
var missingRelationMarkers = []string{
	"schema cache",
	"not found",
	"could not find",
}

// IsMissingRelation сообщает, что источник не существует или не открыт клиенту
func IsMissingRelation(err error) bool {
	msg := errorMessage(err)
	if msg == "" {
		return false
	}

	for _, m := range missingRelationMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}

	return strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")
}

// IsMissingColumn сообщает, что ошибка касается отсутствующей колонки column
func IsMissingColumn(err error, column string) bool {
	msg := errorMessage(err)
	if msg == "" || column == "" {
		return false
	}

	if !strings.Contains(msg, "column") || !strings.Contains(msg, strings.ToLower(column)) {
		return false
	}

	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "could not find")
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}

	var be *backend.Error
	if errors.As(err, &be) {
		return strings.ToLower(be.Message)
	}

	return strings.ToLower(err.Error())
}
