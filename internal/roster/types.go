package roster

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

var ErrUnknownMember = errors.New("unknown member")

// Member is a chat platform identity.
type Member struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Nick       string `json:"nick,omitempty"`
}

// slackAPI is the subset of slack.Client we use, so tests can stub it.
type slackAPI interface {
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	GetUserGroupsContext(ctx context.Context, options ...slack.GetUserGroupsOption) ([]slack.UserGroup, error)
}

// SlackDirectory resolves members through users.info and treats Slack user
// groups as team labels.
type SlackDirectory struct {
	api      slackAPI
	groupTTL time.Duration
	now      func() time.Time

	mu        sync.Mutex
	groups    []slack.UserGroup
	fetchedAt time.Time
}
