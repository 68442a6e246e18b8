package services

import (
	"net/smtp"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T) (*MailService, chan sentMail) {
	t.Helper()
	m := NewMailService(config.MailConfig{
		Host: "smtp.example.com", Port: "587", Username: "u", Password: "p", From: "noreply@example.com",
	}, "https://inkwell.test/")
	require.True(t, m.Enabled)

	sent := make(chan sentMail, 1)
	m.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		sent <- sentMail{addr: addr, to: to, msg: string(msg)}
		return nil
	}
	return m, sent
}

func TestSendNotificationMail(t *testing.T) {
	m, sent := newTestMailer(t)
	m.SendNotification("author@example.com", &models.Notification{
		ActorName:    "reader",
		ArticleID:    "a1",
		ArticleTitle: "标题",
		Type:         models.NotificationTypeComment,
		Content:      "<b>写得好</b>",
	})

	select {
	case mail := <-sent:
		assert.Equal(t, "smtp.example.com:587", mail.addr)
		assert.Equal(t, []string{"author@example.com"}, mail.to)
		assert.Contains(t, mail.msg, "reader 评论了《标题》")
		assert.Contains(t, mail.msg, `href="https://inkwell.test/a/a1"`)
		// 评论内容要转义
		assert.Contains(t, mail.msg, "&lt;b&gt;写得好&lt;/b&gt;")
	case <-time.After(time.Second):
		t.Fatal("mail not sent")
	}
}

func TestMailDisabledWithoutSMTP(t *testing.T) {
	m := NewMailService(config.MailConfig{Host: "smtp.example.com"}, "")
	assert.False(t, m.Enabled)

	called := make(chan struct{}, 1)
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		called <- struct{}{}
		return nil
	}
	m.SendNotification("a@example.com", &models.Notification{Type: models.NotificationTypeLike})

	select {
	case <-called:
		t.Fatal("disabled mailer must not send")
	case <-time.After(50 * time.Millisecond):
	}
}

type recordingMailer struct {
	to []string
}

func (r *recordingMailer) SendNotification(email string, _ *models.Notification) {
	r.to = append(r.to, email)
}
