package mail

import (
	"fmt"
	"net/smtp"

	"orcamentos/internal/config"
	"orcamentos/internal/domain"

	"go.uber.org/zap"
)

// Mailer sends the password-recovery message through an authenticated SMTP
// relay (a Gmail app password in the usual deployment). While the sender
// credentials are empty the feature reports itself as unconfigured instead of
// failing mid-send.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) Configured() bool {
	return m.cfg.Sender != "" && m.cfg.Password != ""
}

// SendRecovery mails the stored password back to the account's address.
func (m *Mailer) SendRecovery(to, nome, senha string) error {
	if !m.Configured() {
		return domain.ErrMailNotConfigured
	}

	body := fmt.Sprintf(
		"Olá %s,\r\n\r\nVocê pediu a recuperação de senha do portal de orçamentos.\r\nSua senha é: %s\r\n\r\nProjetos Melissa",
		nome, senha)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Recuperação de senha\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		m.cfg.Sender, to, body))

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.Sender, []string{to}, msg); err != nil {
		return fmt.Errorf("sending recovery mail: %w", err)
	}
	m.logger.Info("recovery mail sent", zap.String("to", to))
	return nil
}
