package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNoData       = errors.New("data not found")
	ErrDecode       = errors.New("unexpected response format")
)

// HTTPError is a non-2xx answer that maps to none of the sentinels.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

func statusError(code int, message string) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, orStatusText(message, code))
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, orStatusText(message, code))
	case code >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, orStatusText(message, code))
	default:
		return &HTTPError{StatusCode: code, Message: message}
	}
}

func orStatusText(message string, code int) string {
	if message != "" {
		return message
	}
	return http.StatusText(code)
}

// UserMessage turns an error into the text shown in an empty, failed screen.
func UserMessage(err error) string {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrUnavailable):
		return "Сервер недоступен. Проверьте подключение к интернету."
	case errors.Is(err, ErrUnauthorized):
		return "Сессия истекла. Войдите снова."
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoData):
		return "Данные не найдены."
	case errors.Is(err, ErrDecode):
		return "Ошибка обработки ответа сервера."
	case errors.As(err, &httpErr) && httpErr.Message != "":
		return httpErr.Message
	default:
		return "Не удалось загрузить данные."
	}
}
