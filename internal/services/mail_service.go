package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/logger"
	"inkwell/internal/models"

	"go.uber.org/zap"
)

var notificationMail = template.Must(template.New("notification").Parse(`<p>{{.ActorName}} {{if eq .Type "comment"}}评论了{{else}}赞了{{end}}你的文章《{{.ArticleTitle}}》</p>
{{if .Content}}<blockquote>{{.Content}}</blockquote>{{end}}
<p><a href="{{.Link}}">查看文章</a></p>`))

// sendFunc 与 smtp.SendMail 相同的签名
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// MailService 通知邮件。SMTP 配置不全时禁用，所有发送都是异步的。
type MailService struct {
	cfg     config.MailConfig
	siteURL string
	Enabled bool
	send    sendFunc
}

func NewMailService(cfg config.MailConfig, siteURL string) *MailService {
	enabled := cfg.Host != "" && cfg.Port != "" && cfg.Username != "" && cfg.Password != "" && cfg.From != ""
	if !enabled {
		logger.Info("MailService disabled: missing SMTP settings")
	}
	return &MailService{
		cfg:     cfg,
		siteURL: strings.TrimRight(siteURL, "/"),
		Enabled: enabled,
		send:    smtp.SendMail,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Inkwell <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.cfg.From, subject, mime, body))

		if err := s.send(addr, auth, s.cfg.From, to, msg); err != nil {
			logger.Warn("send mail failed", zap.Strings("to", to), zap.Error(err))
			return
		}
		logger.Info("mail sent", zap.Strings("to", to), zap.String("subject", subject))
	}()
}

// notificationBody 渲染通知邮件正文
func (s *MailService) notificationBody(n *models.Notification) (string, error) {
	var buf bytes.Buffer
	err := notificationMail.Execute(&buf, map[string]string{
		"ActorName":    n.ActorName,
		"Type":         string(n.Type),
		"ArticleTitle": n.ArticleTitle,
		"Content":      n.Content,
		"Link":         s.siteURL + "/a/" + n.ArticleID,
	})
	return buf.String(), err
}

// SendNotification 把一条站内通知同步发到邮箱
func (s *MailService) SendNotification(email string, n *models.Notification) {
	body, err := s.notificationBody(n)
	if err != nil {
		logger.Warn("render notification mail", zap.Error(err))
		return
	}
	subject := fmt.Sprintf("[Inkwell] %s 赞了《%s》", n.ActorName, n.ArticleTitle)
	if n.Type == models.NotificationTypeComment {
		subject = fmt.Sprintf("💬 [新评论] %s 评论了《%s》", n.ActorName, n.ArticleTitle)
	}
	s.sendAsync([]string{email}, subject, body)
}
