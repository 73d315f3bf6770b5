package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ErrUnknownEnvelope is returned when a response body matches none of the
// shapes an endpoint is known to produce.
var ErrUnknownEnvelope = errors.New("unknown response envelope")

// Envelope is implemented by list responses that arrive in more than one shape.
// List elements that fail to decode are dropped and counted, so one malformed
// entry does not cost the rest of the list.
type Envelope interface {
	Decode(data []byte) error
	Skipped() int
}

type skipCounter struct {
	skipped int
}

// Skipped reports how many list elements were dropped by the last Decode.
func (c *skipCounter) Skipped() int {
	return c.skipped
}

// FriendList is the response of GET /list/{id}: a bare array, or an object
// carrying the array under "friends" or "data".
type FriendList struct {
	skipCounter
	Friends []User
}

func (l *FriendList) Decode(data []byte) error {
	friends, skipped, err := decodeList[User](data, "friends", "data")
	l.skipped = skipped
	if err != nil {
		return err
	}
	l.Friends = friends
	return nil
}

// RequestList is the response of GET /requests/pending/{id}: a bare array,
// or an object carrying the array under "requests" or "data".
type RequestList struct {
	skipCounter
	Requests []FriendRequest
}

func (l *RequestList) Decode(data []byte) error {
	requests, skipped, err := decodeList[FriendRequest](data, "requests", "data")
	l.skipped = skipped
	if err != nil {
		return err
	}
	l.Requests = requests
	return nil
}

// ConversationPage is the response of GET /conversation/{id}/{username}: an
// object with a "messages" array, which may be absent for empty conversations.
type ConversationPage struct {
	skipCounter
	Messages []Message
}

func (p *ConversationPage) Decode(data []byte) error {
	p.skipped = 0

	fields, err := decodeObject(data)
	if err != nil {
		// Some deployments return the bare message array
		messages, skipped, listErr := decodeList[Message](data)
		if listErr != nil {
			return err
		}
		p.Messages, p.skipped = messages, skipped
		return nil
	}

	p.Messages = []Message{}

	raw, ok := fields["messages"]
	if !ok || isNull(raw) {
		return nil
	}

	messages, skipped, err := decodeItems[Message](raw)
	if err != nil {
		return fmt.Errorf("%w: messages: %w", ErrUnknownEnvelope, err)
	}
	p.Messages, p.skipped = messages, skipped
	return nil
}

// AchievementList is the response of GET /achievements: a bare array, or an
// object carrying the array under "achievements".
type AchievementList struct {
	skipCounter
	Achievements []Achievement
}

func (l *AchievementList) Decode(data []byte) error {
	achievements, skipped, err := decodeList[Achievement](data, "achievements")
	l.skipped = skipped
	if err != nil {
		return err
	}
	l.Achievements = achievements
	return nil
}

// TournamentList is the response of GET / on the tournaments service.
type TournamentList struct {
	skipCounter
	Tournaments []Tournament
}

func (l *TournamentList) Decode(data []byte) error {
	tournaments, skipped, err := decodeList[Tournament](data, "tournaments", "data")
	l.skipped = skipped
	if err != nil {
		return err
	}
	l.Tournaments = tournaments
	return nil
}

// MyTournaments is the response of GET /my-tournaments. It is either grouped
// by role under "created", "participating" and "invited", or a flat
// "tournaments" array whose entries carry the acting user's role.
type MyTournaments struct {
	skipCounter
	Created       []Tournament `json:"created"`
	Participating []Tournament `json:"participating"`
	Invited       []Tournament `json:"invited"`
}

func (m *MyTournaments) Decode(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	m.Created, m.Participating, m.Invited = []Tournament{}, []Tournament{}, []Tournament{}
	m.skipped = 0

	grouped := false
	for key, dst := range map[string]*[]Tournament{
		"created":       &m.Created,
		"participating": &m.Participating,
		"invited":       &m.Invited,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		grouped = true

		if isNull(raw) {
			continue
		}

		list, skipped, err := decodeItems[Tournament](raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnknownEnvelope, key, err)
		}
		*dst = list
		m.skipped += skipped
	}

	if grouped {
		return nil
	}

	raw, ok := fields["tournaments"]
	if !ok {
		return fmt.Errorf("%w: no tournament groups", ErrUnknownEnvelope)
	}

	var flat []Tournament
	if !isNull(raw) {
		flat, m.skipped, err = decodeItems[Tournament](raw)
		if err != nil {
			return fmt.Errorf("%w: tournaments: %w", ErrUnknownEnvelope, err)
		}
	}

	for _, t := range flat {
		switch {
		case t.IsCreator || t.UserRole == RoleCreator:
			m.Created = append(m.Created, t)
		case t.IsParticipant || t.UserRole == RoleParticipant:
			m.Participating = append(m.Participating, t)
		case t.UserRole == RoleInvited:
			m.Invited = append(m.Invited, t)
		}
	}

	return nil
}

// InvitationList is the response of GET /invitations/my-invitations.
type InvitationList struct {
	skipCounter
	Invitations []TournamentInvitation
}

func (l *InvitationList) Decode(data []byte) error {
	invitations, skipped, err := decodeList[TournamentInvitation](data, "invitations", "data")
	l.skipped = skipped
	if err != nil {
		return err
	}
	l.Invitations = invitations
	return nil
}

// decodeList decodes a bare JSON array, or the first array found under one
// of keys in a JSON object. The result is never nil on success. The second
// return value counts elements dropped because they failed to decode.
func decodeList[T any](data []byte, keys ...string) ([]T, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty body", ErrUnknownEnvelope)
	}

	switch data[0] {
	case '[':
		list, skipped, err := decodeItems[T](data)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrUnknownEnvelope, err)
		}
		return list, skipped, nil

	case '{':
		fields, err := decodeObject(data)
		if err != nil {
			return nil, 0, err
		}

		for _, key := range keys {
			raw, ok := fields[key]
			if !ok || !isArray(raw) {
				continue
			}

			list, skipped, err := decodeItems[T](raw)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %s: %w", ErrUnknownEnvelope, key, err)
			}
			return list, skipped, nil
		}

		return nil, 0, fmt.Errorf("%w: object without %v", ErrUnknownEnvelope, keys)
	}

	return nil, 0, fmt.Errorf("%w: unexpected %q", ErrUnknownEnvelope, data[0])
}

// decodeItems decodes a JSON array element by element, dropping and counting
// elements that fail to decode. Only a malformed array itself is an error.
func decodeItems[T any](raw []byte) ([]T, int, error) {
	var items []json.RawMessage
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, 0, err
	}

	list := make([]T, 0, len(items))
	skipped := 0

	for _, item := range items {
		var v T
		if err := sonic.Unmarshal(item, &v); err != nil {
			skipped++
			continue
		}
		list = append(list, v)
	}

	return list, skipped, nil
}

// decodeObject decodes a JSON object into its raw fields.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrUnknownEnvelope)
	}

	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownEnvelope, err)
	}

	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
