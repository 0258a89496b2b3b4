package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{lang: "en", want: "en"},
		{lang: "de", want: "de"},
		{lang: "de-AT", want: "de"},
		{lang: "fr", want: "en"},
		{lang: "", want: "en"},
		{lang: "!!", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, For(tt.lang).Lang())
		})
	}
}

func TestFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, "de", FromAcceptLanguage("de-DE,de;q=0.9,en;q=0.8").Lang())
	assert.Equal(t, "en", FromAcceptLanguage("fr-FR,fr;q=0.9").Lang())
	assert.Equal(t, "en", FromAcceptLanguage("").Lang())
}

func TestT(t *testing.T) {
	assert.Equal(t, "Please select a date.", For("en").T(KeyDate))
	assert.Equal(t, "Bitte wählen Sie ein Datum.", For("de").T(KeyDate))
	assert.Equal(t, "errors.unknown", For("de").T("errors.unknown"))
}

func TestEveryKeyTranslated(t *testing.T) {
	for key := range tables[supported[0]] {
		for _, tag := range supported {
			_, ok := tables[tag][key]
			assert.Truef(t, ok, "%s missing %s", tag, key)
		}
	}
}

func TestFormatEUR(t *testing.T) {
	assert.Equal(t, "€450", For("en").FormatEUR(450))
	assert.Equal(t, "450 €", For("de").FormatEUR(450))
}
