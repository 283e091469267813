package alert

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/sisu-network/sentinel/network"
	"github.com/stretchr/testify/require"
)

func testAlert(status Status) *Alert {
	return &Alert{
		Status:      status,
		Message:     "[sentinel][Ethereum] 0xabc 0.0100 BTC",
		Asset:       "BTC",
		Amount:      "0.0100",
		FromChain:   "Ethereum",
		FromTxHash:  "0xabcdef0123456789",
		FromLink:    "https://etherscan.io/tx/0xabcdef0123456789",
		SigningHash: "signinghash",
		ToChain:     "Bitcoin",
	}
}

func TestWebhook_Payload(t *testing.T) {
	var posted []byte
	httpClient := &network.MockHttp{
		PostJsonFunc: func(url string, body interface{}) ([]byte, error) {
			require.Equal(t, "https://discord.example/webhook", url)
			var err error
			posted, err = json.Marshal(body)
			require.Nil(t, err)
			return nil, nil
		},
	}

	webhook := NewWebhook("https://discord.example/webhook", "mainnet", httpClient)
	webhook.Notify(context.Background(), testAlert(StatusError))

	payload := new(webhookPayload)
	require.Nil(t, json.Unmarshal(posted, payload))
	require.Equal(t, "Sentinel Mainnet", payload.Username)
	require.Len(t, payload.Embeds, 1)

	e := payload.Embeds[0]
	require.Equal(t, "0.0100 BTC", e.Author.Name)
	require.Equal(t, "Bridging BTC from Ethereum to Bitcoin", e.Description)
	require.Equal(t, colorError, e.Color)
	require.Equal(t, iconBase+"error.png", e.Thumbnail.Url)
	require.Equal(t, []embedField{
		{Name: "Ethereum Hash", Value: "[0xabcdef...](https://etherscan.io/tx/0xabcdef0123456789)", Inline: true},
		{Name: "Signing Hash", Value: "signinghash", Inline: true},
		{Name: "Bitcoin Hash", Value: "-", Inline: true},
	}, e.Fields)

	webhook.Notify(context.Background(), testAlert(StatusResolved))
	require.Nil(t, json.Unmarshal(posted, payload))
	require.Equal(t, colorResolve, payload.Embeds[0].Color)
}

func TestWebhook_FailureIsSwallowed(t *testing.T) {
	calls := 0
	httpClient := &network.MockHttp{
		PostJsonFunc: func(url string, body interface{}) ([]byte, error) {
			calls++
			return nil, &network.StatusErr{Url: url, StatusCode: 500}
		},
	}

	NewWebhook("https://discord.example/webhook", "testnet", httpClient).Notify(context.Background(), testAlert(StatusError))
	require.Equal(t, 1, calls)

	// No url, no call.
	NewWebhook("", "testnet", httpClient).Notify(context.Background(), testAlert(StatusError))
	require.Equal(t, 1, calls)
}

func TestSentry_CapturesErrors(t *testing.T) {
	events := make([]*sentry.Event, 0)
	s, err := newSentry(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	require.Nil(t, err)

	s.Notify(context.Background(), testAlert(StatusError))
	s.Notify(context.Background(), testAlert(StatusResolved))

	require.Len(t, events, 1)
	require.Equal(t, "[sentinel][Ethereum] 0xabc 0.0100 BTC", events[0].Message)
	require.Equal(t, "Ethereum", events[0].Tags["from_chain"])
}

func TestSentry_InvalidDsn(t *testing.T) {
	_, err := NewSentry("not a dsn", "mainnet")
	require.NotNil(t, err)
}

func TestMulti(t *testing.T) {
	m1 := &MockNotifier{}
	m2 := &MockNotifier{}

	NewMulti(m1, m2).Notify(context.Background(), testAlert(StatusError))
	require.Len(t, m1.Alerts(), 1)
	require.Len(t, m2.Alerts(), 1)
}
