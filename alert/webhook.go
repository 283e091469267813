package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/network"
)

const (
	iconBase     = "https://raw.githubusercontent.com/renproject/sentinel/master/public/webhook/"
	colorError   = 0xed694a
	colorResolve = 0x4caf50
)

type embedAuthor struct {
	Name    string `json:"name"`
	IconUrl string `json:"icon_url,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedThumbnail struct {
	Url string `json:"url"`
}

type embed struct {
	Author      embedAuthor    `json:"author"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []embedField   `json:"fields"`
	Thumbnail   embedThumbnail `json:"thumbnail"`
}

type webhookPayload struct {
	Username  string  `json:"username"`
	AvatarUrl string  `json:"avatar_url"`
	Content   string  `json:"content,omitempty"`
	Embeds    []embed `json:"embeds"`
}

// Webhook posts alerts as discord style embeds.
type Webhook struct {
	url        string
	network    string
	httpClient network.Http
}

func NewWebhook(url, network string, httpClient network.Http) *Webhook {
	return &Webhook{url: url, network: network, httpClient: httpClient}
}

func (w *Webhook) Notify(ctx context.Context, alert *Alert) {
	if w.url == "" {
		return
	}

	if _, err := w.httpClient.PostJson(w.url, w.payload(alert)); err != nil {
		log.Errorf("Cannot post %s webhook for %s: %v", alert.Status, alert.FromTxHash, err)
	}
}

func (w *Webhook) payload(alert *Alert) *webhookPayload {
	color := colorError
	if alert.Status == StatusResolved {
		color = colorResolve
	}

	description := "Bridging " + alert.Asset
	if alert.FromChain != "" {
		description += " from " + alert.FromChain
	}
	if alert.ToChain != "" {
		description += " to " + alert.ToChain
	}

	return &webhookPayload{
		Username:  "Sentinel " + title(w.network),
		AvatarUrl: iconBase + "avatar.png",
		Content:   alert.Message,
		Embeds: []embed{
			{
				Author: embedAuthor{
					Name:    fmt.Sprintf("%s %s", alert.Amount, alert.Asset),
					IconUrl: fmt.Sprintf("%sicons/ren%s.png", iconBase, alert.Asset),
				},
				Description: description,
				Color:       color,
				Fields: []embedField{
					hashField(alert.FromChain, "From", alert.FromTxHash, alert.FromLink),
					hashField("Signing", "Signing", alert.SigningHash, alert.SigningLink),
					hashField(alert.ToChain, "To", alert.ToTxHash, alert.ToLink),
				},
				Thumbnail: embedThumbnail{Url: iconBase + string(alert.Status) + ".png"},
			},
		},
	}
}

func hashField(chain, fallback, hash, link string) embedField {
	if chain == "" {
		chain = fallback
	}

	value := "-"
	switch {
	case hash != "" && link != "":
		short := hash
		if len(short) > 8 {
			short = short[:8]
		}
		value = fmt.Sprintf("[%s...](%s)", short, link)
	case hash != "":
		value = hash
	}

	return embedField{Name: chain + " Hash", Value: value, Inline: true}
}

func title(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
