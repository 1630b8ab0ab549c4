package notify

import (
	"strings"

	"gamestracker/backend/internal/pipeline"
)

// TopicName derives the notification topic for a genre: a fixed prefix plus
// the lowercase genre slug. This mirrors the external pub/sub naming so
// topic membership stays addressable across system boundaries.
func TopicName(prefix, genre string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(genre)), " ", "-")
	return prefix + slug
}

// GenreFromTopic recovers the genre slug from a topic name.
func GenreFromTopic(prefix, topic string) string {
	return strings.TrimPrefix(topic, prefix)
}

// GamesByGenre returns every record carrying the genre, matched by
// case-insensitive substring so "action" also picks up "Action-Adventure".
func GamesByGenre(genre string, records []pipeline.Record) []pipeline.Record {
	needle := strings.ToLower(genre)

	var games []pipeline.Record
	for _, record := range records {
		for _, recordGenre := range record.Genres {
			if strings.Contains(strings.ToLower(recordGenre), needle) {
				games = append(games, record)
				break
			}
		}
	}
	return games
}
