// Package i18n provides the minimal localization surface the client needs:
// user-facing generic failure messages, negotiated against registered
// languages via golang.org/x/text.
//
//	loc, err := i18n.New(
//	    i18n.WithTranslations("en", map[string]string{
//	        "errors.network": "Connection problem. Please try again.",
//	    }),
//	    i18n.WithTranslations("de", map[string]string{
//	        "errors.network": "Verbindungsproblem. Bitte erneut versuchen.",
//	    }),
//	)
//
//	t := loc.Translator("de-AT")
//	t.T("errors.network") // matched to "de"
package i18n
