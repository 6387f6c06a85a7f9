package clients

import "github.com/dhima/client-service/internal/validation"

var fieldMessages = map[string]string{
	"id":          "Id is required as an integer",
	"first_name":  "First name is required",
	"middle_name": "middle name can only be a string",
	"last_name":   "Last name is required",
	"phone":       "Phone number is required",
	"position":    "Valid position is required",
	"email":       "Valid email address is required",
	"password":    "Password should be at least 5 character",
	"role_id":     "Category id is required as an positive number",
	"clients":     "A non-empty list of clients is required",
	"clientIds":   "Id is required as an array of integer(s)",
}

func clientProperties() map[string]any {
	return map[string]any{
		"first_name":  map[string]any{"type": "string", "minLength": 2, "maxLength": 255},
		"middle_name": map[string]any{"type": "string"},
		"last_name":   map[string]any{"type": "string", "minLength": 2, "maxLength": 255},
		"phone":       map[string]any{"type": "string", "pattern": "^[0-9]+$"},
		"position":    map[string]any{"type": "string", "minLength": 2, "maxLength": 250},
		"email":       map[string]any{"type": "string", "format": "email"},
		"password":    map[string]any{"type": "string", "minLength": 5, "pattern": "^[a-zA-Z0-9]{3,30}$"},
		"role_id":     map[string]any{"type": "integer", "minimum": 1},
	}
}

var clientRequired = []string{"first_name", "last_name", "phone", "position", "role_id"}

func clientSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": clientProperties(),
		"required":   clientRequired,
	}
}

func updateSchema() map[string]any {
	props := clientProperties()
	props["id"] = map[string]any{"type": "integer", "minimum": 1}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"id"}, clientRequired...),
	}
}

func bulkSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"clients": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    clientSchema(),
			},
		},
		"required": []string{"clients"},
	}
}

func deleteSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"clientIds": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "integer"},
			},
		},
		"required": []string{"clientIds"},
	}
}

var (
	createValidator = validation.MustNew(clientSchema(), fieldMessages)
	updateValidator = validation.MustNew(updateSchema(), fieldMessages)
	bulkValidator   = validation.MustNew(bulkSchema(), fieldMessages)
	deleteValidator = validation.MustNew(deleteSchema(), fieldMessages)
)
