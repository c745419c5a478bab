package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrValidation       = errors.New("datos inválidos")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrDuplicateOrder   = errors.New("order_id ya existe")
	ErrNoCapacity       = errors.New("no distribution center with sufficient stock")
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
	ErrAlertEmission    = errors.New("fallo al emitir alerta de stock bajo")
)

// ValidationError describe una regla de entrada violada. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is permite comparar con ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StoreError envuelve una falla del colaborador de persistencia (timeout, conexión perdida).
// errors.Is(err, ErrStoreUnavailable) es true y Unwrap devuelve la causa original.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is permite comparar con ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// NewStoreError construye un StoreError para la operación op.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
