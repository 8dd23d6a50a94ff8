// Package i18n translates user-facing API messages. English strings are the
// message keys; Spanish and French are registered in a catalog.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	MsgOK                 = "OK"
	MsgCreated            = "Created"
	MsgDeleted            = "Deleted"
	MsgInvalidRequest     = "Invalid request"
	MsgUnauthorized       = "Unauthorized"
	MsgForbidden          = "Access denied"
	MsgNotFound           = "Not found"
	MsgConflict           = "Already exists"
	MsgInternal           = "Internal server error"
	MsgTooManyRequests    = "Too many requests, please try again later."
	MsgInvalidCredentials = "Invalid credentials"
	MsgUserPrivate        = "User is private"
	MsgWantsToFollow      = "%s wants to follow you"
	MsgNewComment         = "%s commented on your post"
	MsgNewMessage         = "%s sent you a message"
	MsgLoggedOut          = "Logged out"
)

var supported = []language.Tag{language.English, language.Spanish, language.French}

var translations = map[language.Tag]map[string]string{
	language.Spanish: {
		MsgOK:                 "OK",
		MsgCreated:            "Creado",
		MsgDeleted:            "Eliminado",
		MsgInvalidRequest:     "Solicitud no válida",
		MsgUnauthorized:       "No autorizado",
		MsgForbidden:          "Acceso denegado",
		MsgNotFound:           "No encontrado",
		MsgConflict:           "Ya existe",
		MsgInternal:           "Error interno del servidor",
		MsgTooManyRequests:    "Demasiadas solicitudes, inténtelo de nuevo más tarde.",
		MsgInvalidCredentials: "Credenciales no válidas",
		MsgUserPrivate:        "El usuario es privado",
		MsgWantsToFollow:      "%s quiere seguirte",
		MsgNewComment:         "%s comentó tu publicación",
		MsgNewMessage:         "%s te envió un mensaje",
		MsgLoggedOut:          "Sesión cerrada",
	},
	language.French: {
		MsgOK:                 "OK",
		MsgCreated:            "Créé",
		MsgDeleted:            "Supprimé",
		MsgInvalidRequest:     "Requête invalide",
		MsgUnauthorized:       "Non autorisé",
		MsgForbidden:          "Accès refusé",
		MsgNotFound:           "Introuvable",
		MsgConflict:           "Existe déjà",
		MsgInternal:           "Erreur interne du serveur",
		MsgTooManyRequests:    "Trop de requêtes, veuillez réessayer plus tard.",
		MsgInvalidCredentials: "Identifiants invalides",
		MsgUserPrivate:        "L'utilisateur est privé",
		MsgWantsToFollow:      "%s souhaite vous suivre",
		MsgNewComment:         "%s a commenté votre publication",
		MsgNewMessage:         "%s vous a envoyé un message",
		MsgLoggedOut:          "Déconnecté",
	},
}

var (
	cat     = build()
	matcher = language.NewMatcher(supported)
)

func build() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Match picks the best supported language for an Accept-Language header.
// Unknown or empty headers fall back to def.
func Match(acceptLanguage string, def language.Tag) language.Tag {
	if acceptLanguage == "" {
		return def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return def
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return def
	}
	return supported[idx]
}

// Parse returns the supported tag for a short code such as "es", or English.
func Parse(code string) language.Tag {
	return Match(code, language.English)
}

// Translate renders key in tag, formatting args like fmt.Sprintf.
func Translate(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag, message.Catalog(cat)).Sprintf(key, args...)
}
