package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESMailer_SendPasswordReset(t *testing.T) {
	client := &fakeSES{}
	m := NewSESMailerWithClient(client, "no-reply@gym.test")

	require.NoError(t, m.SendPasswordReset(context.Background(), "ana@gym.test", "https://app/reset?token=abc"))
	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, []string{"ana@gym.test"}, in.Destination.ToAddresses)
	assert.Equal(t, "no-reply@gym.test", aws.ToString(in.Source))
	assert.Contains(t, aws.ToString(in.Message.Body.Text.Data), "https://app/reset?token=abc")
}

func TestSESMailer_Error(t *testing.T) {
	cause := errors.New("throttled")
	m := NewSESMailerWithClient(&fakeSES{err: cause}, "x@gym.test")
	err := m.SendMagicLink(context.Background(), "ana@gym.test", "link")
	assert.ErrorIs(t, err, cause)
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer()
	require.NoError(t, m.SendMagicLink(context.Background(), "bo@gym.test", "https://app/magic?token=t1"))
	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "bo@gym.test", sent[0].To)
	assert.True(t, strings.HasSuffix(sent[0].Body, "token=t1"))
}
