package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

type fakeSendGrid struct {
	status int
	err    error
	got    *mail.SGMailV3
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.got = m
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSendGridSenderRequiresKey(t *testing.T) {
	if s := NewSendGridSender(SendGridConfig{}, logging.Discard()); s != nil {
		t.Fatalf("expected nil sender without api key")
	}
}

func TestSendGridSender(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	s := newSendGridSender(client, SendGridConfig{FromEmail: "leads@seher.example"}, logging.Discard())

	err := s.Send(context.Background(), EmailMessage{To: "sales@seher.example", Subject: "New lead", Body: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if client.got.Subject != "New lead" {
		t.Fatalf("subject = %q", client.got.Subject)
	}
	if client.got.From.Name != defaultFromName {
		t.Fatalf("from name = %q", client.got.From.Name)
	}

	client.status = 401
	if err := s.Send(context.Background(), EmailMessage{To: "sales@seher.example"}); err == nil {
		t.Fatalf("expected error for 401")
	}
	client.err = errors.New("dial failed")
	if err := s.Send(context.Background(), EmailMessage{To: "sales@seher.example"}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestSESSender(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Fatalf("expected nil sender for nil client")
	}
	client := &fakeSES{}
	s := NewSESSender(client, SESConfig{FromEmail: "leads@seher.example", FromName: "Leads"}, logging.Discard())

	err := s.Send(context.Background(), EmailMessage{To: "sales@seher.example", Subject: "New lead", Body: "text", HTML: "<b>html</b>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := aws.ToString(client.in.FromEmailAddress); got != "Leads <leads@seher.example>" {
		t.Fatalf("from = %q", got)
	}
	if got := client.in.Destination.ToAddresses; len(got) != 1 || got[0] != "sales@seher.example" {
		t.Fatalf("to = %v", got)
	}
	body := client.in.Content.Simple.Body
	if aws.ToString(body.Text.Data) != "text" || aws.ToString(body.Html.Data) != "<b>html</b>" {
		t.Fatalf("unexpected body %+v", body)
	}

	client.err = errors.New("throttled")
	if err := s.Send(context.Background(), EmailMessage{To: "sales@seher.example"}); err == nil {
		t.Fatalf("expected error")
	}
}
