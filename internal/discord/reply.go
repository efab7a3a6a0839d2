package discord

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/chatcmd/internal/render"
	"github.com/keshon/chatcmd/pkg/retrylimit"
)

const (
	embedColor       = 0xb01e66
	embedColorFailed = 0x8b0000
	maxEmbedBody     = 4096
)

// restStatus exposes a discordgo REST status code to retrylimit.
type restStatus struct {
	err  error
	code int
}

func (e *restStatus) Error() string   { return e.err.Error() }
func (e *restStatus) Unwrap() error   { return e.err }
func (e *restStatus) StatusCode() int { return e.code }

// classify marks 429 and 5xx responses retryable and every other 4xx
// fatal.
func classify(err error) error {
	var restErr *discordgo.RESTError
	if err == nil || !errors.As(err, &restErr) || restErr.Response == nil {
		return err
	}
	code := restErr.Response.StatusCode
	switch {
	case code == http.StatusTooManyRequests, code >= 500:
		return &restStatus{err: err, code: code}
	case code >= 400:
		return retrylimit.Fatal(err)
	}
	return err
}

func embed(msg render.Message) *discordgo.MessageEmbed {
	body := msg.Body
	if r := []rune(body); len(r) > maxEmbedBody {
		body = string(r[:maxEmbedBody-1]) + "…"
	}
	e := &discordgo.MessageEmbed{Title: msg.Title, Description: body, Color: embedColor}
	if msg.Failed {
		e.Color = embedColorFailed
	}
	return e
}

// reply sends msg as an embed, retrying transient failures.
func (b *Bot) reply(ctx context.Context, s *discordgo.Session, channelID string, msg render.Message) error {
	if msg.Title == "" && msg.Body == "" {
		return nil
	}
	e := embed(msg)
	return retrylimit.Do(ctx, b.limiter, b.retry, func() error {
		_, err := s.ChannelMessageSendEmbed(channelID, e, discordgo.WithContext(ctx))
		return classify(err)
	})
}
