// Package i18n owns the service's translation bundle. Error messages and
// the exported timestamp heading are resolved per request from the
// Accept-Language header.
package i18n

import (
	"embed"
	"net/http"

	goi18n "github.com/nicksnyder/go-i18n/i18n"
)

//go:embed locale/en-us.all.json
var localeFS embed.FS

// DefaultLocale is the fallback language and the language the message
// ids themselves are written against.
const DefaultLocale = "en-US"

// Load parses the embedded translation files into the process bundle.
// Call once at startup, before serving requests.
func Load() error {
	buf, err := localeFS.ReadFile("locale/en-us.all.json")
	if err != nil {
		return err
	}
	return goi18n.ParseTranslationFileBytes("en-us.all.json", buf)
}

// Tfunc resolves a translate function for an Accept-Language header value
// (a plain tag works too), falling back to the default locale. The result
// is never nil: with no bundle loaded ids pass through untranslated.
func Tfunc(acceptLanguage string) goi18n.TranslateFunc {
	T, err := goi18n.Tfunc(acceptLanguage, DefaultLocale)
	if err != nil || T == nil {
		return func(translationID string, args ...interface{}) string {
			return translationID
		}
	}
	return T
}

// TfuncFromRequest resolves the translate function for one HTTP request.
func TfuncFromRequest(r *http.Request) goi18n.TranslateFunc {
	return Tfunc(r.Header.Get("Accept-Language"))
}

// SubmitTimeHeading returns the localized heading of the submission
// timestamp column. The id doubles as the English text, so an untranslated
// bundle still renders correctly.
func SubmitTimeHeading(T goi18n.TranslateFunc) string {
	const heading = "Submission date"
	if T == nil {
		return heading
	}
	return T(heading)
}
