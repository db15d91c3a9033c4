package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s ist erforderlich", field)
	case "email":
		return fmt.Sprintf("%s muss eine gültige E-Mail-Adresse sein", field)
	case "oneof":
		return fmt.Sprintf("%s muss einer der folgenden Werte sein: %s", field, fe.Param())
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s muss mindestens %s Zeichen lang sein", field, fe.Param())
		}
		return fmt.Sprintf("%s muss mindestens %s sein", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s darf höchstens %s Zeichen lang sein", field, fe.Param())
		}
		return fmt.Sprintf("%s darf höchstens %s sein", field, fe.Param())
	default:
		return fmt.Sprintf("%s ist ungültig", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Title":          "Titel",
		"Content":        "Inhalt",
		"Category":       "Kategorie",
		"Type":           "Art",
		"OrgName":        "Firma / Name",
		"Location":       "Standort",
		"Description":    "Beschreibung",
		"Message":        "Nachricht",
		"ApplicantName":  "Name",
		"ApplicantEmail": "E-Mail",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
