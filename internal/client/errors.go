package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Generic user-facing messages used when the server gives nothing better.
const (
	MsgGeneric        = "Houve um erro interno, tente novamente mais tarde!"
	MsgCreateBooking  = "Erro ao criar reserva"
	MsgConfirmBooking = "Erro ao confirmar reserva"
	MsgCancelBooking  = "Erro ao cancelar reserva"
	MsgLoadBookings   = "Erro ao carregar reservas"
	MsgDeposit        = "Erro ao processar recarga"
	MsgLoadServices   = "Erro ao carregar serviços"
	MsgSaveService    = "Erro ao salvar serviço"
	MsgLoadWallet     = "Erro ao carregar carteira"
	MsgLogin          = "Erro ao fazer login"
	MsgSessionExpired = "Sessão expirada, faça login novamente"
)

// ErrUnauthorized matches any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	// Errors is the nested section -> field -> message map, kept raw because
	// sections are not guaranteed to be objects.
	Errors    map[string]json.RawMessage
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// FieldMessages flattens Errors into individual messages, ordered by section
// then field. Non-object sections and non-string values are skipped.
func (e *APIError) FieldMessages() []string {
	sections := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		sections = append(sections, k)
	}
	sort.Strings(sections)

	var out []string
	for _, section := range sections {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(e.Errors[section], &fields); err != nil {
			continue
		}
		names := make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, name := range names {
			var msg string
			if err := json.Unmarshal(fields[name], &msg); err != nil || msg == "" {
				continue
			}
			out = append(out, msg)
		}
	}
	return out
}

// Messages returns what to show the user for err: the flattened field errors,
// else the server message, else fallback.
func Messages(err error, fallback string) []string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msgs := apiErr.FieldMessages(); len(msgs) > 0 {
			return msgs
		}
		if apiErr.Message != "" {
			return []string{apiErr.Message}
		}
	}
	if fallback == "" {
		fallback = MsgGeneric
	}
	return []string{fallback}
}

type errorBody struct {
	Message string                     `json:"message"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func parseAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = parsed.Message
		apiErr.Errors = parsed.Errors
	}
	return apiErr
}
