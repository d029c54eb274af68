// Package apperr holds the user-facing errors of the API. Every message is a fixed
// Spanish string; handlers send it verbatim under the "error" key.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns a copy of e carrying cause for logging.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Status: e.Status, Message: e.Message, Err: cause}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Status == e.Status && t.Message == e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

var (
	ErrUnauthorized = New(http.StatusUnauthorized, "No autorizado")
	ErrForbidden    = New(http.StatusForbidden, "No tienes permiso para realizar esta acción")
	ErrInvalidID    = New(http.StatusBadRequest, "Identificador inválido")
	ErrInvalidBody  = New(http.StatusBadRequest, "Datos de la solicitud inválidos")
	ErrRateLimited  = New(http.StatusTooManyRequests, "Demasiadas solicitudes, intenta más tarde")
	ErrInternal     = New(http.StatusInternalServerError, "Error interno del servidor")

	ErrRegisterFields     = New(http.StatusBadRequest, "Nombre, correo y contraseña son obligatorios")
	ErrPasswordTooShort   = New(http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres")
	ErrEmailTaken         = New(http.StatusConflict, "El correo ya está registrado")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Credenciales inválidas")
	ErrUserNotFound       = New(http.StatusNotFound, "Usuario no encontrado")
	ErrTokenRequired      = New(http.StatusBadRequest, "El token es obligatorio")

	ErrVendorExists       = New(http.StatusConflict, "Ya tienes un negocio registrado")
	ErrVendorNameRequired = New(http.StatusBadRequest, "El nombre del negocio es obligatorio")
	ErrVendorNotFound     = New(http.StatusNotFound, "Negocio no encontrado")

	ErrProductFields     = New(http.StatusBadRequest, "El nombre y el precio son obligatorios")
	ErrProductNotFound   = New(http.StatusNotFound, "Producto no encontrado")
	ErrProductNeedsImage = New(http.StatusBadRequest, "El producto necesita una imagen para publicarse")
	ErrFacebookDisabled  = New(http.StatusServiceUnavailable, "La publicación en Facebook no está configurada")
	ErrFacebookPublish   = New(http.StatusBadGateway, "Error al publicar en Facebook")

	ErrClassifiedFields   = New(http.StatusBadRequest, "El título y la descripción son obligatorios")
	ErrClassifiedLimit    = New(http.StatusConflict, "Has alcanzado el límite de clasificados activos")
	ErrClassifiedNotFound = New(http.StatusNotFound, "Clasificado no encontrado")

	ErrAlreadyFollowing = New(http.StatusConflict, "Ya sigues a este negocio")
	ErrNotFollowing     = New(http.StatusNotFound, "No sigues a este negocio")

	ErrAlreadyFavorite = New(http.StatusConflict, "El producto ya está en favoritos")
	ErrNotFavorite     = New(http.StatusNotFound, "El producto no está en favoritos")

	ErrSelfConversation      = New(http.StatusBadRequest, "No puedes iniciar una conversación contigo mismo")
	ErrConversationNotFound  = New(http.StatusNotFound, "Conversación no encontrada")
	ErrConversationForbidden = New(http.StatusForbidden, "No tienes acceso a esta conversación")
	ErrEmptyMessage          = New(http.StatusBadRequest, "El mensaje no puede estar vacío")
	ErrMessageTooLong        = New(http.StatusBadRequest, "El mensaje es demasiado largo")

	ErrCouponFields    = New(http.StatusBadRequest, "El título del cupón es obligatorio")
	ErrCouponDiscount  = New(http.StatusBadRequest, "El descuento debe estar entre 1 y 100")
	ErrCouponValidity  = New(http.StatusBadRequest, "La fecha de vigencia debe ser futura")
	ErrCouponCodeTaken = New(http.StatusConflict, "El código de cupón ya existe")
	ErrCouponNotFound  = New(http.StatusNotFound, "Cupón no encontrado")
	ErrCouponExpired   = New(http.StatusGone, "El cupón ha expirado")
	ErrCouponExhausted = New(http.StatusConflict, "El cupón ya no tiene canjes disponibles")
	ErrCouponRedeemed  = New(http.StatusConflict, "Ya canjeaste este cupón")

	ErrNotificationNotFound = New(http.StatusNotFound, "Notificación no encontrada")

	ErrImageRequired = New(http.StatusBadRequest, "La imagen es obligatoria")
	ErrImageTooLarge = New(http.StatusBadRequest, "La imagen no puede superar 5 MB")
	ErrImageFormat   = New(http.StatusBadRequest, "Formato de imagen no soportado")
	ErrImageUpload   = New(http.StatusBadGateway, "Error al subir la imagen")

	ErrPaymentsDisabled = New(http.StatusServiceUnavailable, "Los pagos no están configurados")
	ErrInvalidSignature = New(http.StatusBadRequest, "Firma inválida")
)
