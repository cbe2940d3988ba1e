package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[EventType]*pubsub.Topic
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventGameCreated   EventType = "game-created"
	EventGameCompleted EventType = "game-completed"
	EventGameDeleted   EventType = "game-deleted"
	EventDeclareWinner EventType = "declare-winner"
)

// GameEvent is published after a game transition has been committed.
type GameEvent struct {
	GameID     int64         `msgpack:"game_id"`
	GuildID    string        `msgpack:"guild_id"`
	Status     string        `msgpack:"status"`
	WinnerSide string        `msgpack:"winner_side,omitempty"`
	Changes    []RatingDelta `msgpack:"changes,omitempty"`
}

// RatingDelta is the change one game applied to one rated entity.
type RatingDelta struct {
	Kind  string `msgpack:"kind"`
	ID    int64  `msgpack:"id"`
	Delta int    `msgpack:"delta"`
}

// DeclareWinnerMessage asks the service to record the winner of a game.
type DeclareWinnerMessage struct {
	GameID int64  `msgpack:"game_id"`
	Side   string `msgpack:"side"`
}
