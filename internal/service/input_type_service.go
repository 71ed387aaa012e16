package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pwannenmacher/criteria-settings/internal/database"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/permission"
	"github.com/pwannenmacher/criteria-settings/internal/repository"
)

const (
	msgInputTypeNameTaken = "input type with this name already exists."
	msgMinAboveMax        = "min must be less than or equal to max."
	maxInputTypeNameLen   = 20
)

// CreateInputTypeInput is the payload of an input type create
type CreateInputTypeInput struct {
	Name string `json:"name" validate:"required,max=20"`
	Min  *int   `json:"min"`
	Max  *int   `json:"max"`
}

// InputTypeService manages input types
type InputTypeService struct {
	db *sql.DB
}

// NewInputTypeService creates a new input type service
func NewInputTypeService(db *sql.DB) *InputTypeService {
	return &InputTypeService{db: db}
}

// List returns every input type
func (s *InputTypeService) List(ctx context.Context, actor Actor) ([]models.InputType, error) {
	var types []models.InputType
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionReadCriteriaSetting); err != nil {
			return err
		}

		var err error
		types, err = store.InputTypes.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return types, nil
}

// Create validates and stores an input type
func (s *InputTypeService) Create(ctx context.Context, actor Actor, in CreateInputTypeInput) (*models.InputType, error) {
	in.Name = strings.TrimSpace(in.Name)

	var inputType *models.InputType
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionWriteCriteriaSetting); err != nil {
			return err
		}
		if err := validate(&in); err != nil {
			return err
		}
		if err := checkBounds(in.Min, in.Max); err != nil {
			return err
		}
		if err := ensureInputTypeNameFree(ctx, store, in.Name, 0); err != nil {
			return err
		}

		inputType = &models.InputType{Name: in.Name, Min: in.Min, Max: in.Max}
		if err := store.InputTypes.Create(ctx, inputType); err != nil {
			if errors.Is(err, repository.ErrInputTypeExists) {
				return NewValidationError("name", msgInputTypeNameTaken)
			}
			return err
		}
		return record(ctx, store, actor, AuditInputTypeCreated, ResourceInputType, inputType.Name)
	})
	if err != nil {
		return nil, err
	}
	return inputType, nil
}

// Update applies a partial update. Absent fields keep their value and an
// explicit null clears a bound.
func (s *InputTypeService) Update(ctx context.Context, actor Actor, id uint, fields map[string]json.RawMessage) (*models.InputType, error) {
	var inputType *models.InputType
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		store := repository.New(tx)
		if err := authorize(ctx, store, actor, permission.ActionWriteCriteriaSetting); err != nil {
			return err
		}

		var err error
		inputType, err = store.InputTypes.GetByID(ctx, id)
		if errors.Is(err, repository.ErrInputTypeNotFound) {
			return ErrInputTypeNotFound
		}
		if err != nil {
			return err
		}

		verr := &ValidationError{Fields: map[string][]string{}}
		for field, raw := range fields {
			switch field {
			case "name":
				var name string
				if err := json.Unmarshal(raw, &name); err != nil {
					verr.Fields[field] = append(verr.Fields[field], "Not a valid string.")
					continue
				}
				name = strings.TrimSpace(name)
				switch {
				case name == "":
					verr.Fields[field] = append(verr.Fields[field], "This field may not be blank.")
				case utf8.RuneCountInString(name) > maxInputTypeNameLen:
					verr.Fields[field] = append(verr.Fields[field],
						fmt.Sprintf("Ensure this field has no more than %d characters.", maxInputTypeNameLen))
				default:
					inputType.Name = name
				}
			case "min", "max":
				var bound *int
				if err := json.Unmarshal(raw, &bound); err != nil {
					verr.Fields[field] = append(verr.Fields[field], "A valid integer is required.")
					continue
				}
				if field == "min" {
					inputType.Min = bound
				} else {
					inputType.Max = bound
				}
			}
		}
		if len(verr.Fields) > 0 {
			return verr
		}
		if err := checkBounds(inputType.Min, inputType.Max); err != nil {
			return err
		}
		if err := ensureInputTypeNameFree(ctx, store, inputType.Name, inputType.ID); err != nil {
			return err
		}

		if err := store.InputTypes.Update(ctx, inputType); err != nil {
			switch {
			case errors.Is(err, repository.ErrInputTypeExists):
				return NewValidationError("name", msgInputTypeNameTaken)
			case errors.Is(err, repository.ErrInputTypeNotFound):
				return ErrInputTypeNotFound
			}
			return err
		}
		return record(ctx, store, actor, AuditInputTypeUpdated, ResourceInputType, inputType.Name)
	})
	if err != nil {
		return nil, err
	}
	return inputType, nil
}

func checkBounds(minimum, maximum *int) error {
	if minimum != nil && maximum != nil && *minimum > *maximum {
		return NewValidationError(NonFieldErrors, msgMinAboveMax)
	}
	return nil
}

// ensureInputTypeNameFree reports a validation error when another input type uses name
func ensureInputTypeNameFree(ctx context.Context, store *repository.Store, name string, selfID uint) error {
	existing, err := store.InputTypes.GetByName(ctx, name)
	if errors.Is(err, repository.ErrInputTypeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return NewValidationError("name", msgInputTypeNameTaken)
	}
	return nil
}
