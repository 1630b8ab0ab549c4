package notify

import (
	"fmt"
	"html"
	"strings"

	"gamestracker/backend/internal/pipeline"
)

// FormatGenreText makes a genre name representable in an email subject.
func FormatGenreText(genre string) string {
	if strings.EqualFold(genre, "rpg") {
		return "RPG"
	}

	words := strings.FieldsFunc(genre, func(r rune) bool { return r == ' ' || r == '-' })
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

// FormatDisplayPrice renders a minor-unit price for an email.
func FormatDisplayPrice(pennies int) string {
	if pennies == 0 {
		return "FREE"
	}
	return fmt.Sprintf("£%.2f", float64(pennies)/100)
}

// BuildDigestHTML renders the genre digest email body.
func BuildDigestHTML(genre string, games []pipeline.Record) string {
	var b strings.Builder

	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h1>New %s games released!</h1>", html.EscapeString(FormatGenreText(genre)))

	for _, game := range games {
		b.WriteString(`<div style="margin-bottom:24px">`)
		fmt.Fprintf(&b, `<h2><a href="%s">%s</a></h2>`,
			html.EscapeString(game.URL), html.EscapeString(game.Title))
		if game.ImageURL != "" {
			fmt.Fprintf(&b, `<img src="%s" alt="%s" width="300"/>`,
				html.EscapeString(game.ImageURL), html.EscapeString(game.Title))
		}
		fmt.Fprintf(&b, "<p><b>%s</b> &mdash; released %s on %s</p>",
			FormatDisplayPrice(game.PriceMinor),
			game.ReleaseDate.Format(pipeline.CanonicalDateFormat),
			html.EscapeString(FormatGenreText(game.Platform)))
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(truncate(game.Description, 400)))
		b.WriteString("</div>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
