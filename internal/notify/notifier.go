package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gamestracker/backend/internal/models"
	"gamestracker/backend/internal/pipeline"

	"gorm.io/gorm"
)

// Sender is the outbound mail boundary, satisfied by *Mailer.
type Sender interface {
	Send(recipients []string, subject, htmlBody string) error
}

// Notifier sends targeted genre digests after an ingestion run.
type Notifier struct {
	db          *gorm.DB
	mailer      Sender
	topicPrefix string
}

// NewNotifier returns a Notifier bound to the given database handle and mailer.
func NewNotifier(db *gorm.DB, mailer Sender, topicPrefix string) *Notifier {
	return &Notifier{db: db, mailer: mailer, topicPrefix: topicPrefix}
}

// SendGenreDigests emails every subscribed genre's new games to that genre's
// subscribers. Subscribers who did not opt into NSFW content get a digest
// with NSFW games filtered out. A failed send is logged; the remaining
// genres still go out.
func (n *Notifier) SendGenreDigests(ctx context.Context, records []pipeline.Record) error {
	var subscribers []models.Subscriber
	err := n.db.WithContext(ctx).Preload("Genres").Find(&subscribers).Error
	if err != nil {
		return fmt.Errorf("loading subscribers: %w", err)
	}

	for genre, recipients := range subscribersByGenre(subscribers) {
		games := GamesByGenre(genre, records)
		if len(games) == 0 {
			continue
		}

		subject := fmt.Sprintf("New %s games for you!", FormatGenreText(genre))
		topic := TopicName(n.topicPrefix, genre)

		for _, filtered := range []bool{false, true} {
			emails, digest := digestVariant(genre, games, recipients, filtered)
			if len(emails) == 0 || digest == "" {
				continue
			}
			if err := n.mailer.Send(emails, subject, digest); err != nil {
				slog.WarnContext(ctx, "failed to send genre digest", "topic", topic, "err", err)
				continue
			}
			slog.InfoContext(ctx, "sent genre digest", "topic", topic, "recipients", len(emails), "games", len(games))
		}
	}

	return nil
}

// digestVariant builds the digest for either the NSFW-tolerant recipients
// (filtered=false) or the rest (filtered=true, NSFW games removed).
func digestVariant(genre string, games []pipeline.Record, recipients []models.Subscriber, filtered bool) ([]string, string) {
	var emails []string
	for _, sub := range recipients {
		if sub.IncludeNSFW != filtered {
			emails = append(emails, sub.Email)
		}
	}
	if len(emails) == 0 {
		return nil, ""
	}

	visible := games
	if filtered {
		visible = nil
		for _, game := range games {
			if !game.NSFW {
				visible = append(visible, game)
			}
		}
		if len(visible) == 0 {
			return nil, ""
		}
	}

	return emails, BuildDigestHTML(genre, visible)
}

func subscribersByGenre(subscribers []models.Subscriber) map[string][]models.Subscriber {
	byGenre := make(map[string][]models.Subscriber)
	for _, sub := range subscribers {
		for _, genre := range sub.Genres {
			key := strings.ToLower(genre.Name)
			byGenre[key] = append(byGenre[key], sub)
		}
	}
	return byGenre
}
