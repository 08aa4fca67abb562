package errwebhook

import "fmt"

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error webhook status %d: %s", e.Status, e.Body)
}
