package models

const (
	// DefaultPageSize размер страницы, если клиент не передал size
	DefaultPageSize = 100

	// MaxPageSize верхняя граница size
	MaxPageSize = 1000

	// UserIDHeader заголовок с идентификатором вызывающего пользователя
	UserIDHeader = "X-Sharer-User-Id"

	// TimestampLayout формат дат без часового пояса, принимаемый от клиентов
	TimestampLayout = "2006-01-02T15:04:05"
)
