package mail

import (
	"backend/config"
	"backend/utils"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

// MailService 邮件发送服务
type MailService struct {
	config *config.Config
}

func NewMailService() *MailService {
	return &MailService{
		config: config.GetConfig(),
	}
}

// shouldRetry 判断是否应该重试
func (s *MailService) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "i/o timeout")
}

// sendMailInternal 内部邮件发送函数
func (s *MailService) sendMailInternal(e *email.Email) error {
	addr := fmt.Sprintf("%s:%d", s.config.Mail.Host, s.config.Mail.Port)
	auth := smtp.PlainAuth("", s.config.Mail.Username, s.config.Mail.Password, s.config.Mail.Host)

	tlsConfig := &tls.Config{
		ServerName: s.config.Mail.Host,
		MinVersion: tls.VersionTLS12,
	}

	// 只允许特定端口和协议组合，避免自动切换
	if s.config.Mail.UseTLS {
		switch s.config.Mail.Port {
		case 465:
			// 465 端口只允许 SSL/TLS
			return e.SendWithTLS(addr, auth, tlsConfig)
		case 587:
			// 587 端口只允许 STARTTLS
			return e.SendWithStartTLS(addr, auth, tlsConfig)
		default:
			return fmt.Errorf("不支持的端口和TLS组合: 端口%d UseTLS=%v", s.config.Mail.Port, s.config.Mail.UseTLS)
		}
	}
	// 非加密，通常只用于 25 端口
	if s.config.Mail.Port == 25 {
		return e.Send(addr, auth)
	}
	return fmt.Errorf("不支持的端口和非TLS组合: 端口%d UseTLS=%v", s.config.Mail.Port, s.config.Mail.UseTLS)
}

// SendMail 发送HTML邮件，仅对网络类错误重试一次
func (s *MailService) SendMail(to string, subject string, content string) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.config.Mail.FromName, s.config.Mail.FromAddress)
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(content)

	err := s.sendMailInternal(e)
	if err != nil && s.shouldRetry(err) {
		time.Sleep(2 * time.Second)
		err = s.sendMailInternal(e)
	}
	if err != nil {
		return fmt.Errorf("发送邮件失败: %v", err)
	}
	return nil
}

// SendWelcomeMail 注册成功后发送欢迎邮件
// 与注册请求解耦：未配置SMTP时直接跳过，发送失败只记日志
func (s *MailService) SendWelcomeMail(to string, name string) {
	if !s.config.Mail.Enabled {
		return
	}

	content := fmt.Sprintf(`<p>Здравствуйте, %s!</p>
<p>Добро пожаловать в "Что посмотреть" — ваш каталог сериалов.</p>`, name)

	if err := s.SendMail(to, "Добро пожаловать!", content); err != nil {
		utils.LogError(fmt.Sprintf("发送欢迎邮件给 %s 失败", to), err)
	}
}
