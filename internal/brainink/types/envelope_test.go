package types_test

import (
	"testing"

	"github.com/brainink/hub/internal/brainink/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendList_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantNames []string
		wantErr   error
	}{
		{
			name:      "bare array",
			body:      `[{"id":1,"username":"ada"},{"id":2,"username":"bob"}]`,
			wantNames: []string{"ada", "bob"},
		},
		{
			name:      "friends key",
			body:      `{"friends":[{"id":3,"username":"cy"}]}`,
			wantNames: []string{"cy"},
		},
		{
			name:      "data key",
			body:      `{"success":true,"data":[{"id":4,"username":"di"}]}`,
			wantNames: []string{"di"},
		},
		{
			name:      "empty array",
			body:      `[]`,
			wantNames: []string{},
		},
		{
			name:    "unknown object",
			body:    `{"items":[{"id":1}]}`,
			wantErr: types.ErrUnknownEnvelope,
		},
		{
			name:    "scalar",
			body:    `"nope"`,
			wantErr: types.ErrUnknownEnvelope,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: types.ErrUnknownEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var list types.FriendList

			err := list.Decode([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			names := make([]string, 0, len(list.Friends))
			for _, f := range list.Friends {
				names = append(names, f.Username)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestConversationPage_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantLen int
		wantErr error
	}{
		{name: "messages key", body: `{"messages":[{"id":1,"content":"hi"},{"id":2,"content":"yo"}],"page":1}`, wantLen: 2},
		{name: "missing messages", body: `{"page":1}`, wantLen: 0},
		{name: "null messages", body: `{"messages":null}`, wantLen: 0},
		{name: "bare array", body: `[{"id":1}]`, wantLen: 1},
		{name: "scalar", body: `42`, wantErr: types.ErrUnknownEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var page types.ConversationPage

			err := page.Decode([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, page.Messages)
			assert.Len(t, page.Messages, tt.wantLen)
		})
	}
}

func TestMyTournaments_Decode(t *testing.T) {
	t.Parallel()

	t.Run("grouped", func(t *testing.T) {
		t.Parallel()

		var mine types.MyTournaments
		require.NoError(t, mine.Decode([]byte(`{
			"created":[{"id":"a"}],
			"participating":[{"id":"b"},{"id":"c"}],
			"invited":null
		}`)))

		assert.Len(t, mine.Created, 1)
		assert.Len(t, mine.Participating, 2)
		assert.NotNil(t, mine.Invited)
		assert.Empty(t, mine.Invited)
	})

	t.Run("flat with roles", func(t *testing.T) {
		t.Parallel()

		var mine types.MyTournaments
		require.NoError(t, mine.Decode([]byte(`{"success":true,"tournaments":[
			{"id":"a","user_role":"creator","is_creator":true},
			{"id":"b","user_role":"participant","is_participant":true},
			{"id":"c","user_role":"invited"}
		]}`)))

		require.Len(t, mine.Created, 1)
		assert.Equal(t, "a", mine.Created[0].ID)
		require.Len(t, mine.Participating, 1)
		assert.Equal(t, "b", mine.Participating[0].ID)
		require.Len(t, mine.Invited, 1)
		assert.Equal(t, "c", mine.Invited[0].ID)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		var mine types.MyTournaments
		require.ErrorIs(t, mine.Decode([]byte(`[]`)), types.ErrUnknownEnvelope)
		require.ErrorIs(t, mine.Decode([]byte(`{"success":true}`)), types.ErrUnknownEnvelope)
	})
}

func TestInvitationList_Decode(t *testing.T) {
	t.Parallel()

	var list types.InvitationList
	require.NoError(t, list.Decode([]byte(`{"success":true,"invitations":[
		{"id":"i1","tournament_id":"t1","status":"pending","tournament":{"id":"t1","name":"Algebra Cup"}}
	]}`)))

	require.Len(t, list.Invitations, 1)
	assert.Equal(t, "Algebra Cup", list.Invitations[0].TournamentName())
}

func TestEnvelope_SkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	t.Run("friends", func(t *testing.T) {
		t.Parallel()

		var list types.FriendList
		require.NoError(t, list.Decode([]byte(`{"friends":[
			{"id":11,"username":"ada"},
			{"id":"12","username":"bob"}
		]}`)))

		require.Len(t, list.Friends, 1)
		assert.Equal(t, "ada", list.Friends[0].Username)
		assert.Equal(t, 1, list.Skipped())
	})

	t.Run("achievements", func(t *testing.T) {
		t.Parallel()

		var list types.AchievementList
		require.NoError(t, list.Decode([]byte(`[
			{"id":1,"name":"First Steps","earned_at":"2025-06-01T10:00:00Z"},
			{"id":2,"name":"Streak","earned_at":"Sun, 01 Jun 2025 10:00:00 GMT"},
			{"id":3,"name":"Scholar"}
		]`)))

		require.Len(t, list.Achievements, 2)
		assert.Equal(t, "First Steps", list.Achievements[0].Name)
		assert.Equal(t, "Scholar", list.Achievements[1].Name)
		assert.Equal(t, 1, list.Skipped())
	})

	t.Run("conversation", func(t *testing.T) {
		t.Parallel()

		var page types.ConversationPage
		require.NoError(t, page.Decode([]byte(`{"messages":[
			{"id":1,"content":"hi"},
			{"id":2,"content":"yo","created_at":"yesterday"}
		]}`)))

		require.Len(t, page.Messages, 1)
		assert.Equal(t, 1, page.Skipped())
	})

	t.Run("grouped tournaments", func(t *testing.T) {
		t.Parallel()

		var mine types.MyTournaments
		require.NoError(t, mine.Decode([]byte(`{
			"created":[{"id":"a"},{"id":7}],
			"participating":[{"id":"b"}],
			"invited":[{"id":false}]
		}`)))

		assert.Len(t, mine.Created, 1)
		assert.Len(t, mine.Participating, 1)
		assert.Empty(t, mine.Invited)
		assert.Equal(t, 2, mine.Skipped())
	})

	t.Run("malformed array is still an error", func(t *testing.T) {
		t.Parallel()

		var list types.FriendList
		require.ErrorIs(t, list.Decode([]byte(`[{"id":1},`)), types.ErrUnknownEnvelope)
	})
}
