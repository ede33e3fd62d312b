package domain

import "errors"

// ErrMailNotConfigured is returned while the SMTP sender credentials are
// empty; password recovery stays disabled until an operator fills them in.
var ErrMailNotConfigured = errors.New("configure o email do remetente para usar esta função")

// Mailer sends the password-recovery message.
type Mailer interface {
	Configured() bool
	SendRecovery(to, nome, senha string) error
}
