package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrUnavailable        = errors.New("servicio externo no configurado")
)

// Errores de enlaces dinámicos.
var (
	ErrLinkRevoked   = errors.New("el enlace fue revocado")
	ErrLinkExpired   = errors.New("el enlace expiró")
	ErrLinkExhausted = errors.New("el enlace alcanzó el máximo de visitas")
	ErrLinkPassword  = errors.New("contraseña del enlace incorrecta")
)
