package auth

import (
	"github.com/jrsteele09/seniorinteract/internal/errors"
)

// User-facing texts. They are shown verbatim by the front-end.
const (
	MsgInvalidEmail           = "Por favor, ingresa un email válido"
	MsgPasswordTooShort       = "La contraseña debe tener al menos 8 caracteres"
	MsgInvalidRUT             = "El RUT ingresado no es válido"
	MsgRequiredFields         = "Todos los campos son obligatorios"
	MsgConnectionError        = "Error de conexión. Inténtalo nuevamente"
	MsgInvalidCredentials     = "Email o contraseña incorrectos"
	MsgUserNotFound           = "No existe una cuenta con este email"
	MsgEmailAlreadyRegistered = "Ya existe una cuenta con este email"

	MsgRegistered      = "Cuenta creada exitosamente. Revisa tu email para confirmar"
	MsgSignedIn        = "Inicio de sesión exitoso"
	MsgSignedOut       = "Sesión cerrada correctamente"
	MsgRecoveryEmailed = "Se ha enviado un email con instrucciones para recuperar tu contraseña"

	MsgLocalRegistered = "Cuenta creada exitosamente en modo local"
	MsgLocalSignedIn   = "Inicio de sesión exitoso en modo local"
	MsgLocalSignedOut  = "Sesión cerrada correctamente en modo local"
	MsgLocalRecovery   = "En modo local: Se simularía el envío de email de recuperación"
)

var errorMessages = []struct {
	err error
	msg string
}{
	{errors.ErrRequiredFields, MsgRequiredFields},
	{errors.ErrInvalidEmail, MsgInvalidEmail},
	{errors.ErrPasswordTooShort, MsgPasswordTooShort},
	{errors.ErrInvalidRUT, MsgInvalidRUT},
	{errors.ErrInvalidCredentials, MsgInvalidCredentials},
	{errors.ErrUserNotFound, MsgUserNotFound},
	{errors.ErrEmailAlreadyRegistered, MsgEmailAlreadyRegistered},
}

// Message returns the text to show for err. Anything without a dedicated
// message, storage failures included, reads as a connection error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, em := range errorMessages {
		if errors.Is(err, em.err) {
			return em.msg
		}
	}
	return MsgConnectionError
}
