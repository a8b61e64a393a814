package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Email o contraseña incorrectos."
	errEmailTaken         = "El correo ya está registrado."
	errCodeInvalid        = "Código invalido"
	errCodeExpired        = "Código expirado"
	errNotificationMissing = "Notificación no encontrada"

	// The reset-send endpoint always answers this, whether or not the email
	// exists — identity enumeration guard.
	msgCodeSent = "El código fue enviado exitosamente."
)
