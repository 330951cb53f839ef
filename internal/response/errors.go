package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTeacherAccessOnly  ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrDuplicateName ErrCode = "DUPLICATE_NAME"
	ErrPhaseConflict ErrCode = "PHASE_CONFLICT"

	// ─── External model service ────────────────────────────────────────
	ErrModelService    ErrCode = "MODEL_SERVICE_FAILURE"
	ErrTrainingAborted ErrCode = "TRAINING_ABORTED"

	// ─── Restart ───────────────────────────────────────────────────────
	ErrRestartFailed ErrCode = "RESTART_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Código de clase o contraseña incorrectos."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido."
	case ErrTeacherAccessOnly:
		return "Este recurso está reservado al profesor."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación ha fallado. Revisa los datos enviados."
	case ErrInvalidID:
		return "El formato del ID no es válido."
	case ErrInvalidPayload:
		return "El cuerpo de la petición no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."
	case ErrDuplicateName:
		return "Ya hay un alumno con ese nombre en la clase."
	case ErrPhaseConflict:
		return "La clase no admite ese cambio de fase."

	// ─── External model service ────────────────────────────────────────
	case ErrModelService:
		return "El servicio de modelos no está disponible."
	case ErrTrainingAborted:
		return "El entrenamiento se canceló por fallos repetidos."

	// ─── Restart ───────────────────────────────────────────────────────
	case ErrRestartFailed:
		return "No se pudo reiniciar la clase."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas peticiones. Inténtalo más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Se ha producido un error interno."
	default:
		return "Se ha producido un error inesperado."
	}
}
