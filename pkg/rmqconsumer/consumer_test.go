package rmqconsumer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fileshare-api/config"
)

func Test_delivery_Table(t *testing.T) {
	bob := uuid.MustParse("5b0c1d2e-3f40-4a51-8b62-7c8d9eafb0c1")

	type tc struct {
		name     string
		msgType  string
		body     string
		wantErr  error
		anyErr   bool
		wantCall *Envelope
	}
	cases := []tc{
		{
			name: "file shared",
			body: `{"event_name":"file:shared","recipient_id":"` + bob.String() + `","payload":{"share_id":"s1"}}`,
			wantCall: &Envelope{
				Name:        "file:shared",
				RecipientID: bob,
				Payload:     []byte(`{"share_id":"s1"}`),
			},
		},
		{
			name:    "name falls back to message type",
			msgType: "delivery:completed",
			body:    `{"recipient_id":"` + bob.String() + `","payload":null}`,
			wantCall: &Envelope{
				Name:        "delivery:completed",
				RecipientID: bob,
				Payload:     []byte(`null`),
			},
		},
		{
			name:    "missing recipient",
			body:    `{"event_name":"file:shared","payload":{}}`,
			wantErr: ErrNoRecipient,
		},
		{
			name:   "garbage body",
			body:   `not-json`,
			anyErr: true,
		},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got *Envelope
			c := New(config.MQ{}, zap.NewNop(), nil, func(env Envelope) int {
				got = &env
				return 1
			})

			err := c.delivery(amqp091.Delivery{Type: tt.msgType, Body: []byte(tt.body)})
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.anyErr:
				assert.Error(t, err)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.wantCall.Name, got.Name)
				assert.Equal(t, tt.wantCall.RecipientID, got.RecipientID)
				assert.JSONEq(t, string(tt.wantCall.Payload), string(got.Payload))
			}
		})
	}
}

func TestConnect_InvalidDSN(t *testing.T) {
	l := zap.NewNop()
	c := New(config.MQ{}, l, nil, func(Envelope) int { return 0 })

	err := c.Connect("amqp://bad:://dsn")
	require.Error(t, err)
	require.Nil(t, c.chConsume)
	require.Nil(t, c.conn)
}
