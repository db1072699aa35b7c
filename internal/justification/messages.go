package justification

import "errors"

// ErrorKind classifies upstream HTTP failures into a closed set so the
// user-facing message mapping stays data-driven.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindForbidden
	KindBadRequest
	KindServerError
)

func kindFromStatus(status int) ErrorKind {
	switch {
	case status == 403:
		return KindForbidden
	case status == 400:
		return KindBadRequest
	case status >= 500:
		return KindServerError
	default:
		return KindUnknown
	}
}

// User-facing failure text is French; the portal frontend shows these
// strings verbatim.
const (
	msgNoAbsences      = "Veuillez sélectionner au moins une absence à justifier."
	msgNoValidFiles    = "Aucun fichier valide n'a été fourni. Veuillez joindre au moins un justificatif."
	msgAccessDenied    = "Accès refusé. Vous n'êtes pas autorisé à soumettre cette justification."
	msgInvalidData     = "Les données soumises sont invalides."
	msgServerError     = "Erreur interne du serveur. Veuillez réessayer plus tard."
	msgInvalidResponse = "Réponse invalide du serveur."
	msgBadFormat       = "Format de réponse inattendu du serveur."

	// defaultReason is used when the student leaves the free-text field empty.
	defaultReason = "Justification d'absence"
)

var kindMessages = map[ErrorKind]string{
	KindForbidden:   msgAccessDenied,
	KindBadRequest:  msgInvalidData,
	KindServerError: msgServerError,
}

// Precondition and response-shape failures raised before or after the
// network call.
var (
	ErrNoAbsences            = errors.New(msgNoAbsences)
	ErrNoValidFiles          = errors.New(msgNoValidFiles)
	ErrInvalidServerResponse = errors.New(msgInvalidResponse)
	ErrUnexpectedResponse    = errors.New(msgBadFormat)
)

// SubmitError is a classified upstream rejection of the justification POST.
// Message is the localized text chosen for the kind; Backend keeps whatever
// text the portal supplied for diagnostics.
type SubmitError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Backend string
}

func (e *SubmitError) Error() string { return e.Message }

// newSubmitError picks the user-facing message for an upstream rejection.
// 403 always maps to the access-denied text regardless of body content; 400
// passes the backend message through when one exists; 5xx maps to a generic
// internal-error text; anything else falls back to the backend message, then
// the status line.
func newSubmitError(status int, statusLine string, parsed map[string]any) *SubmitError {
	kind := kindFromStatus(status)
	backend := backendMessage(parsed)

	msg := kindMessages[kind]
	switch kind {
	case KindBadRequest:
		if backend != "" {
			msg = backend
		}
	case KindUnknown:
		msg = backend
		if msg == "" {
			msg = statusLine
		}
	}

	return &SubmitError{Kind: kind, Status: status, Message: msg, Backend: backend}
}

func backendMessage(parsed map[string]any) string {
	if parsed == nil {
		return ""
	}
	if msg, ok := parsed["message"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := parsed["error"].(string); ok && msg != "" {
		return msg
	}
	return ""
}
