// Package i18n translates message codes (notifications, validation codes)
// into user-facing text.
package i18n

import (
	"context"
	"fmt"
	"strings"
)

// DefaultLang is used when no preference is known or the language is unsupported.
const DefaultLang = "en"

type langKey struct{}

var catalogs = map[string]map[string]string{
	"en": {
		"required":             "Required",
		"invalid_option":       "Not a valid option",
		"invalid_email":        "Not a valid email address",
		"invalid_json":         "Not valid JSON",
		"invalid_number":       "Not a valid number",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"invalid_date":         "Not a valid date (YYYY-MM-DD)",

		"record_created": "%s added successfully!",
		"record_updated": "%s updated successfully!",
		"record_deleted": "%s deleted successfully!",
		"file_uploaded":  "File uploaded successfully!",
		"ai_generated":   "AI suggestion ready.",

		"fetch_failed":   "Failed to fetch %s.",
		"save_failed":    "Failed to save %s.",
		"create_failed":  "Failed to add %s.",
		"update_failed":  "Failed to update %s.",
		"delete_failed":  "Failed to delete %s.",
		"upload_failed":  "Failed to upload file.",
		"ai_failed":      "Failed to generate document.",
		"busy":           "Please wait for the current request to finish.",
		"no_research":    "No previous research found. Try AI Research.",
		"no_file":        "Please select a file to upload.",
		"no_text":        "Please paste some text to summarize.",
		"draft_invalid":  "Please fill in all required fields.",
		"draft_saved":    "Draft saved successfully!",
		"draft_failed":   "Failed to save draft.",
		"summary_saved":  "Summary generated and saved!",
		"brief_failed":   "Failed to save file reference.",
		"research_saved": "Research saved.",

		"app_name":            "Smith & Partners",
		"sign_in":             "Sign in",
		"sign_out":            "Sign out",
		"email":               "Email",
		"password":            "Password",
		"invalid_credentials": "Invalid email or password",
		"welcome":             "Welcome back",
		"nav_cases":           "Cases",
		"nav_clients":         "Clients",
		"nav_documents":       "Documents",
		"nav_calendar":        "Calendar",
		"nav_schedule":        "Court schedule",
		"nav_campaigns":       "Campaigns",
		"nav_workflows":       "Workflows",
		"nav_chatbot":         "Chatbot",
		"nav_analytics":       "Analytics",
		"nav_research":        "Legal research",
		"nav_briefs":          "Briefs",
		"nav_drafts":          "Document drafting",
	},
	"fr": {
		"required":             "Requis",
		"invalid_option":       "Option invalide",
		"invalid_email":        "Adresse e-mail invalide",
		"invalid_json":         "JSON invalide",
		"invalid_number":       "Nombre invalide",
		"must_not_be_negative": "Ne doit pas être négatif",
		"out_of_range":         "Hors limites",
		"invalid_date":         "Date invalide (AAAA-MM-JJ)",

		"record_created": "%s ajouté avec succès !",
		"record_updated": "%s mis à jour avec succès !",
		"record_deleted": "%s supprimé avec succès !",
		"file_uploaded":  "Fichier téléversé avec succès !",
		"ai_generated":   "Suggestion IA prête.",

		"fetch_failed":   "Échec du chargement : %s.",
		"save_failed":    "Échec de l'enregistrement : %s.",
		"create_failed":  "Échec de l'ajout : %s.",
		"update_failed":  "Échec de la mise à jour : %s.",
		"delete_failed":  "Échec de la suppression : %s.",
		"upload_failed":  "Échec du téléversement.",
		"ai_failed":      "Échec de la génération du document.",
		"busy":           "Veuillez patienter, une requête est en cours.",
		"no_research":    "Aucune recherche précédente. Essayez la recherche IA.",
		"no_file":        "Veuillez sélectionner un fichier.",
		"no_text":        "Veuillez coller un texte à résumer.",
		"draft_invalid":  "Veuillez remplir tous les champs obligatoires.",
		"draft_saved":    "Brouillon enregistré.",
		"draft_failed":   "Échec de l'enregistrement du brouillon.",
		"summary_saved":  "Résumé généré et enregistré.",
		"brief_failed":   "Échec de l'enregistrement du fichier.",
		"research_saved": "Recherche enregistrée.",

		"app_name":            "Smith & Partners",
		"sign_in":             "Se connecter",
		"sign_out":            "Se déconnecter",
		"email":               "E-mail",
		"password":            "Mot de passe",
		"invalid_credentials": "E-mail ou mot de passe invalide",
		"welcome":             "Bon retour",
		"nav_cases":           "Dossiers",
		"nav_clients":         "Clients",
		"nav_documents":       "Documents",
		"nav_calendar":        "Calendrier",
		"nav_schedule":        "Audiences",
		"nav_campaigns":       "Campagnes",
		"nav_workflows":       "Processus",
		"nav_chatbot":         "Chatbot",
		"nav_analytics":       "Statistiques",
		"nav_research":        "Recherche juridique",
		"nav_briefs":          "Mémoires",
		"nav_drafts":          "Rédaction",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		if tag == "" {
			continue
		}
		base := strings.SplitN(tag, "-", 2)[0]
		if _, ok := catalogs[base]; ok {
			return base
		}
	}
	return DefaultLang
}

// T returns the text for code in lang, falling back to the default language
// and finally to the code itself.
func T(lang, code string) string {
	if m, ok := catalogs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Tf is T followed by fmt.Sprintf with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the language stored by WithLang or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
