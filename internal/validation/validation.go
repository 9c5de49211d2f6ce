// Package validation checks user input before it is sent to the backend and
// renders failures as Portuguese form messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"marketplace/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// decimals are validated as numbers so gte/lte tags apply
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.ServiceCategory(fl.Field().String()).Valid()
	})
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type Errors []FieldError

func (v Errors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Messages returns the user-facing message of every failure.
func (v Errors) Messages() []string {
	out := make([]string, 0, len(v))
	for _, err := range v {
		out = append(out, err.Message)
	}
	return out
}

// Struct validates s and returns Errors, or nil when s is valid.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

var fieldMessages = map[string]string{
	"ServiceInput.ProviderID":         "Prestador não identificado",
	"ServiceInput.Name":               "O nome deve ter entre 3 e 100 caracteres",
	"ServiceInput.Description":        "A descrição deve ter no máximo 500 caracteres",
	"ServiceInput.Category":           "Selecione uma categoria válida",
	"ServiceInput.Duration":           "A duração deve estar entre 1 e 1440 minutos",
	"ServiceInput.Price":              "O preço deve estar entre 0,01 e 1.000.000",
	"RegisterRequest.Name":            "O nome deve ter pelo menos 3 caracteres",
	"RegisterRequest.Email":           "Email inválido",
	"RegisterRequest.NIF":             "O NIF deve ter 9 dígitos",
	"RegisterRequest.Phone":           "O telefone deve ter 9 dígitos",
	"RegisterRequest.Password":        "A senha deve ter pelo menos 6 caracteres",
	"RegisterRequest.ConfirmPassword": "As senhas não coincidem",
	"RegisterRequest.Type":            "Selecione o tipo de conta",
	"LoginRequest.Email":              "Informe um email válido",
	"LoginRequest.Password":           "Informe a senha",
	"DepositRequest.Description":      "A descrição deve ter no máximo 255 caracteres",
}

func message(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.StructNamespace()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "email":
		return "Email inválido"
	case "min", "gte":
		return fmt.Sprintf("%s deve ser no mínimo %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s deve ser no máximo %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s é inválido", fe.Field())
}
