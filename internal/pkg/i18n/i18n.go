// Package i18n turns errors into short user-facing messages.
package i18n

import (
	"context"
	"errors"

	"golang.org/x/text/language"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// Category names a class of failure shown to users.
type Category string

const (
	CategoryUnauthorized   Category = "unauthorized"
	CategorySessionExpired Category = "session_expired"
	CategoryForbidden      Category = "forbidden"
	CategoryNotFound       Category = "not_found"
	CategoryConflict       Category = "conflict"
	CategoryValidation     Category = "validation"
	CategoryRateLimited    Category = "rate_limited"
	CategoryServer         Category = "server"
	CategoryTimeout        Category = "timeout"
	CategoryNetwork        Category = "network"
	CategoryUnknown        Category = "unknown"
)

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.French,
	language.Spanish,
	language.German,
}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[Category]string{
	language.English: {
		CategoryUnauthorized:   "Invalid credentials.",
		CategorySessionExpired: "Your session has expired. Please sign in again.",
		CategoryForbidden:      "You do not have permission to do that.",
		CategoryNotFound:       "We could not find what you were looking for.",
		CategoryConflict:       "This conflicts with an existing record.",
		CategoryValidation:     "Some fields are invalid. Please check and try again.",
		CategoryRateLimited:    "Too many requests. Please wait a moment.",
		CategoryServer:         "Something went wrong on our side. Please try again later.",
		CategoryTimeout:        "The request timed out. Please try again.",
		CategoryNetwork:        "Network error. Check your connection.",
		CategoryUnknown:        "An unexpected error occurred.",
	},
	language.French: {
		CategoryUnauthorized:   "Identifiants invalides.",
		CategorySessionExpired: "Votre session a expiré. Veuillez vous reconnecter.",
		CategoryForbidden:      "Vous n'avez pas l'autorisation d'effectuer cette action.",
		CategoryNotFound:       "Nous n'avons pas trouvé ce que vous cherchiez.",
		CategoryConflict:       "Cela entre en conflit avec un enregistrement existant.",
		CategoryValidation:     "Certains champs sont invalides. Vérifiez et réessayez.",
		CategoryRateLimited:    "Trop de requêtes. Veuillez patienter un instant.",
		CategoryServer:         "Une erreur est survenue de notre côté. Réessayez plus tard.",
		CategoryTimeout:        "La requête a expiré. Veuillez réessayer.",
		CategoryNetwork:        "Erreur réseau. Vérifiez votre connexion.",
		CategoryUnknown:        "Une erreur inattendue est survenue.",
	},
	language.Spanish: {
		CategoryUnauthorized:   "Credenciales no válidas.",
		CategorySessionExpired: "Tu sesión ha caducado. Vuelve a iniciar sesión.",
		CategoryForbidden:      "No tienes permiso para hacer eso.",
		CategoryNotFound:       "No encontramos lo que buscabas.",
		CategoryConflict:       "Esto entra en conflicto con un registro existente.",
		CategoryValidation:     "Algunos campos no son válidos. Revísalos e inténtalo de nuevo.",
		CategoryRateLimited:    "Demasiadas solicitudes. Espera un momento.",
		CategoryServer:         "Algo salió mal de nuestro lado. Inténtalo más tarde.",
		CategoryTimeout:        "La solicitud tardó demasiado. Inténtalo de nuevo.",
		CategoryNetwork:        "Error de red. Comprueba tu conexión.",
		CategoryUnknown:        "Se produjo un error inesperado.",
	},
	language.German: {
		CategoryUnauthorized:   "Ungültige Anmeldedaten.",
		CategorySessionExpired: "Deine Sitzung ist abgelaufen. Bitte melde dich erneut an.",
		CategoryForbidden:      "Dazu fehlt dir die Berechtigung.",
		CategoryNotFound:       "Wir konnten nicht finden, wonach du suchst.",
		CategoryConflict:       "Das steht im Konflikt mit einem vorhandenen Eintrag.",
		CategoryValidation:     "Einige Felder sind ungültig. Bitte prüfen und erneut versuchen.",
		CategoryRateLimited:    "Zu viele Anfragen. Bitte warte einen Moment.",
		CategoryServer:         "Bei uns ist etwas schiefgelaufen. Bitte später erneut versuchen.",
		CategoryTimeout:        "Die Anfrage hat zu lange gedauert. Bitte erneut versuchen.",
		CategoryNetwork:        "Netzwerkfehler. Prüfe deine Verbindung.",
		CategoryUnknown:        "Ein unerwarteter Fehler ist aufgetreten.",
	},
}

// CategoryOf classifies err. Session expiry is checked before the plain 401.
func CategoryOf(err error) Category {
	var verr *validator.Error
	switch {
	case errors.Is(err, apiclient.ErrSessionExpired):
		return CategorySessionExpired
	case errors.Is(err, apiclient.ErrUnauthorized):
		return CategoryUnauthorized
	case errors.Is(err, apiclient.ErrForbidden):
		return CategoryForbidden
	case errors.Is(err, apiclient.ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, apiclient.ErrConflict):
		return CategoryConflict
	case errors.Is(err, apiclient.ErrValidation), errors.As(err, &verr):
		return CategoryValidation
	case errors.Is(err, apiclient.ErrRateLimited):
		return CategoryRateLimited
	case errors.Is(err, apiclient.ErrServer):
		return CategoryServer
	case errors.Is(err, apiclient.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, apiclient.ErrNetwork):
		return CategoryNetwork
	}
	return CategoryUnknown
}

// Match picks the supported language closest to lang, which may be a tag
// ("fr-CA") or an Accept-Language list.
func Match(lang string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// Message returns the localized text for err's category, or "" for nil.
func Message(err error, lang string) string {
	if err == nil {
		return ""
	}
	return Text(CategoryOf(err), lang)
}

// Text returns the localized text for c.
func Text(c Category, lang string) string {
	if msg, ok := messages[Match(lang)][c]; ok {
		return msg
	}
	return messages[supported[0]][CategoryUnknown]
}
