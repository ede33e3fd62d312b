package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"orcamentos/internal/config"
	"orcamentos/internal/domain"
	"orcamentos/internal/model"
	"orcamentos/internal/schema"
	"orcamentos/internal/storage/localfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubMailer struct {
	configured bool
	sentTo     string
	sentSenha  string
}

func (s *stubMailer) Configured() bool { return s.configured }

func (s *stubMailer) SendRecovery(to, nome, senha string) error {
	s.sentTo, s.sentSenha = to, senha
	return nil
}

func newTestManager(t *testing.T) (*Manager, *stubMailer) {
	t.Helper()
	store, err := localfs.New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	mailer := &stubMailer{}
	return NewWithBackend(store, mailer, zaptest.NewLogger(t)), mailer
}

func ana() model.User {
	return model.User{Nome: "Ana", Sobrenome: "Souza", Telefone: "5511988887777", Email: "a@x.com", Senha: "1234"}
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.RegisterUser(ana()))

	second := ana()
	second.Nome = "Other"
	err := m.RegisterUser(second)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := m.ListUsers()
	require.NoError(t, err)
	count := 0
	for _, u := range users {
		if u.Email == "a@x.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAuthenticate(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.RegisterUser(ana()))

	got, err := m.Authenticate("a@x.com", "1234")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Nome)

	_, err = m.Authenticate("a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// password compare is case-sensitive
	u := ana()
	u.Email = "b@x.com"
	u.Senha = "Segredo"
	require.NoError(t, m.RegisterUser(u))
	_, err = m.Authenticate("b@x.com", "segredo")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// email is exact-match, no trimming or case folding
	_, err = m.Authenticate("A@x.com", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSubmitBudgetAssignsIDAndTimestamp(t *testing.T) {
	m, _ := newTestManager(t)

	stored, err := m.SubmitBudget(model.Budget{
		UserEmail:   "a@x.com",
		UserNome:    "Ana",
		Localizacao: "https://www.google.com/maps?q=-23.5,-46.6",
		Medidas:     "10x20",
		Descricao:   "casa",
	}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.NotEmpty(t, stored.DataCriacao)
	assert.Equal(t, model.StatusPendente, stored.Status)

	other, err := m.SubmitBudget(model.Budget{UserEmail: "a@x.com"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, stored.ID, other.ID)
}

func TestSubmitBudgetCapsAttachments(t *testing.T) {
	m, _ := newTestManager(t)

	files := make([]Attachment, 6)
	for i := range files {
		files[i] = Attachment{
			Filename: fmt.Sprintf("foto%d.jpg", i),
			MimeType: "image/jpeg",
			Data:     []byte{0xff, 0xd8},
		}
	}

	stored, err := m.SubmitBudget(model.Budget{UserEmail: "a@x.com", UserNome: "Ana"}, files)
	require.NoError(t, err)
	assert.Len(t, stored.Imagens, MaxAttachments)

	budgets, err := m.ListBudgets("a@x.com")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Len(t, budgets[0].Imagens, MaxAttachments)
}

type flakyUploadBackend struct {
	domain.Backend
	failOn string
}

func (f *flakyUploadBackend) UploadBlob(owner, filename string, data []byte, mimeType string) (string, error) {
	if filename == f.failOn {
		return "", errors.New("quota exceeded")
	}
	return f.Backend.UploadBlob(owner, filename, data, mimeType)
}

func TestSubmitBudgetSkipsFailedUploads(t *testing.T) {
	store, err := localfs.New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	m := NewWithBackend(&flakyUploadBackend{Backend: store, failOn: "foto1.jpg"}, &stubMailer{}, zaptest.NewLogger(t))

	files := []Attachment{
		{Filename: "foto0.jpg", MimeType: "image/jpeg", Data: []byte("a")},
		{Filename: "foto1.jpg", MimeType: "image/jpeg", Data: []byte("b")},
		{Filename: "foto2.jpg", MimeType: "image/jpeg", Data: []byte("c")},
	}

	stored, err := m.SubmitBudget(model.Budget{UserEmail: "a@x.com", UserNome: "Ana"}, files)
	require.NoError(t, err)
	require.Len(t, stored.Imagens, 2)
	assert.Contains(t, stored.Imagens[0], "foto0.jpg")
	assert.Contains(t, stored.Imagens[1], "foto2.jpg")
}

func TestListBudgetsFiltersByOwner(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.SubmitBudget(model.Budget{UserEmail: "a@x.com", Descricao: "primeiro"}, nil)
	require.NoError(t, err)
	_, err = m.SubmitBudget(model.Budget{UserEmail: "b@x.com", Descricao: "alheio"}, nil)
	require.NoError(t, err)
	_, err = m.SubmitBudget(model.Budget{UserEmail: "a@x.com", Descricao: "segundo"}, nil)
	require.NoError(t, err)

	mine, err := m.ListBudgets("a@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "primeiro", mine[0].Descricao)
	assert.Equal(t, "segundo", mine[1].Descricao)

	all, err := m.ListBudgets("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEditBudget(t *testing.T) {
	m, _ := newTestManager(t)

	stored, err := m.SubmitBudget(model.Budget{UserEmail: "a@x.com", Descricao: "casa", Medidas: "10x20"}, nil)
	require.NoError(t, err)

	require.NoError(t, m.EditBudget(stored.ID, schema.Record{"status": model.StatusFechado}))

	budgets, err := m.ListBudgets("a@x.com")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, model.StatusFechado, budgets[0].Status)
	assert.Equal(t, "casa", budgets[0].Descricao)
	assert.Equal(t, "10x20", budgets[0].Medidas)
}

func TestEditBudgetRejectsUnknownField(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.EditBudget("whatever", schema.Record{"user_email": "evil@x.com"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestEditBudgetMissingID(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.EditBudget("missing", schema.Record{"status": model.StatusFechado})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecoverPassword(t *testing.T) {
	m, mailer := newTestManager(t)
	require.NoError(t, m.RegisterUser(ana()))

	err := m.RecoverPassword("a@x.com")
	assert.ErrorIs(t, err, domain.ErrMailNotConfigured)

	mailer.configured = true
	require.NoError(t, m.RecoverPassword("a@x.com"))
	assert.Equal(t, "a@x.com", mailer.sentTo)
	assert.Equal(t, "1234", mailer.sentSenha)

	err = m.RecoverPassword("nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewFallsBackToLocalStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		GoogleConfig: config.GoogleConfig{
			// unreachable remote: no credentials file, no inline secret
			CredentialsFile: filepath.Join(dir, "missing-credentials.json"),
		},
		LocalConfig: config.LocalConfig{DataDir: dir},
	}

	m, err := New(cfg, &stubMailer{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, m.Remote())

	require.NoError(t, m.RegisterUser(ana()))
	users, err := m.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@x.com", users[0].Email)
}

func TestNewFallsBackOnMalformedCredentials(t *testing.T) {
	dir := t.TempDir()
	credFile := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(credFile, []byte(`{"type":"service_account","private_key":"garbage"}`), 0o600))

	cfg := config.Config{
		GoogleConfig: config.GoogleConfig{CredentialsFile: credFile},
		LocalConfig:  config.LocalConfig{DataDir: dir},
	}

	m, err := New(cfg, &stubMailer{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, m.Remote())
}
