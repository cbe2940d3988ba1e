package roster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

var _ Directory = (*SlackDirectory)(nil)

const defaultGroupTTL = time.Minute

// NewSlackDirectory creates a Directory backed by the Slack Web API.
func NewSlackDirectory(token string) *SlackDirectory {
	return NewSlackDirectoryWithAPI(slack.New(token))
}

// NewSlackDirectoryWithAPI creates a Directory with a specific Slack client.
// Useful for tests that need to intercept API calls.
func NewSlackDirectoryWithAPI(api slackAPI) *SlackDirectory {
	return &SlackDirectory{
		api:      api,
		groupTTL: defaultGroupTTL,
		now:      time.Now,
	}
}

// Resolve accepts "<@U123>", "<@U123|name>", "@U123" or "U123".
func (d *SlackDirectory) Resolve(ctx context.Context, handle string) (Member, error) {
	id := ParseHandle(handle)
	if id == "" {
		return Member{}, fmt.Errorf("%w: %q", ErrUnknownMember, handle)
	}
	user, err := d.api.GetUserInfoContext(ctx, id)
	if err != nil {
		if strings.Contains(err.Error(), "user_not_found") {
			return Member{}, fmt.Errorf("%w: %s", ErrUnknownMember, id)
		}
		return Member{}, fmt.Errorf("failed to look up user %s: %w", id, err)
	}
	if user.Deleted {
		return Member{}, fmt.Errorf("%w: %s is deactivated", ErrUnknownMember, id)
	}

	name := user.RealName
	if name == "" {
		name = user.Name
	}
	return Member{
		ExternalID: user.ID,
		Name:       name,
		Nick:       user.Profile.DisplayName,
	}, nil
}

// TeamLabels returns the names of the user groups the member is in. The group
// list is cached for a minute since one game asks for every player.
func (d *SlackDirectory) TeamLabels(ctx context.Context, externalID string) ([]string, error) {
	groups, err := d.userGroups(ctx)
	if err != nil {
		return nil, err
	}
	var labels []string
	for _, g := range groups {
		for _, u := range g.Users {
			if u == externalID {
				labels = append(labels, g.Name)
				break
			}
		}
	}
	return labels, nil
}

func (d *SlackDirectory) userGroups(ctx context.Context) ([]slack.UserGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.groups != nil && d.now().Sub(d.fetchedAt) < d.groupTTL {
		return d.groups, nil
	}
	groups, err := d.api.GetUserGroupsContext(ctx, slack.GetUserGroupsOptionIncludeUsers(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}
	log.Debug("Fetched Slack user groups", "count", len(groups))
	d.groups = groups
	d.fetchedAt = d.now()
	return groups, nil
}

// ParseHandle extracts the user id from a Slack mention.
func ParseHandle(handle string) string {
	h := strings.TrimSpace(handle)
	h = strings.TrimPrefix(h, "<")
	h = strings.TrimSuffix(h, ">")
	h = strings.TrimPrefix(h, "@")
	if i := strings.IndexByte(h, '|'); i >= 0 {
		h = h[:i]
	}
	return h
}
