package signal

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestParseSessionID(t *testing.T) {
	for _, in := range []string{`"abc"`, `{"sessionId":"abc"}`, `{"id":" abc "}`} {
		sid, err := parseSessionID(raw(in))
		require.NoError(t, err, in)
		assert.Equal(t, domain.SessionID("abc"), sid, in)
	}

	for _, in := range []string{``, `null`, `""`, `{}`, `{"sessionId":5}`, `[1]`, `{`} {
		_, err := parseSessionID(raw(in))
		assert.ErrorIs(t, err, domain.ErrMalformedRequest, in)
	}
}

func TestParseVideoReferenceAliases(t *testing.T) {
	cases := map[string]string{
		`"dQw4w9WgXcQ"`:                        "dQw4w9WgXcQ",
		`{"videoReference":"a"}`:               "a",
		`{"videoId":"b"}`:                      "b",
		`{"videoUrl":"https://x.test/v"}`:      "https://x.test/v",
		`{"videoReference":"a","videoId":"b"}`: "a",
	}
	for in, want := range cases {
		got, err := parseVideoReference(raw(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseState(t *testing.T) {
	st, err := parseState(raw(`{"positionSeconds":12.5,"isPlaying":true,"videoReference":"v1"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.PlaybackState{PositionSeconds: 12.5, IsPlaying: true, VideoReference: "v1"}, st)

	st, err = parseState(raw(`{"state":{"currentTime":3,"isPlaying":false}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.PlaybackState{PositionSeconds: 3}, st)

	for _, in := range []string{
		`"playing"`,
		`{"isPlaying":true}`,
		`{"positionSeconds":"1","isPlaying":true}`,
		`{"positionSeconds":1,"isPlaying":"yes"}`,
		`{"positionSeconds":-1,"isPlaying":true}`,
		`{"positionSeconds":1e400,"isPlaying":true}`,
		`{"state":{"currentTime":-1e400,"isPlaying":false}}`,
	} {
		_, err := parseState(raw(in))
		assert.ErrorIs(t, err, domain.ErrMalformedRequest, in)
	}
}

func TestParseChatText(t *testing.T) {
	got, err := parseChatText(raw(`{"message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = parseChatText(raw(`{"text":"   "}`))
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)
}
