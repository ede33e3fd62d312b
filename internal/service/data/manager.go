package data

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"orcamentos/internal/config"
	"orcamentos/internal/domain"
	"orcamentos/internal/model"
	"orcamentos/internal/schema"
	"orcamentos/internal/storage/localfs"
	"orcamentos/internal/storage/sheets"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDuplicateEmail     = errors.New("email já cadastrado")
	ErrInvalidCredentials = errors.New("email ou senha incorretos")
)

// MaxAttachments caps the photos stored per budget; extras are dropped, the
// client app warns before submitting.
const MaxAttachments = 4

const createdAtLayout = "2006-01-02 15:04:05.000000"

// Attachment is one uploaded photo as it leaves the form.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// Manager is the engine every screen talks to. The backend it writes through
// is fixed at construction: remote when the Google setup succeeds, local
// otherwise, never switched afterwards.
type Manager struct {
	logger  *zap.Logger
	backend domain.Backend
	mailer  domain.Mailer
	remote  bool
}

// New builds the manager, attempting the Google-backed store first. Any error
// while loading credentials, authorizing, or opening the spreadsheet and
// uploads folder logs the cause and settles on the local store for the life
// of the process.
func New(cfg config.Config, mailer domain.Mailer, logger *zap.Logger) (*Manager, error) {
	backend, remote := pickBackend(cfg, logger)
	if backend == nil {
		local, err := localfs.New(cfg.LocalConfig.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing local store: %w", err)
		}
		backend = local
	}
	return &Manager{logger: logger, backend: backend, mailer: mailer, remote: remote}, nil
}

func pickBackend(cfg config.Config, logger *zap.Logger) (domain.Backend, bool) {
	remote, err := sheets.New(cfg.GoogleConfig, logger)
	if err != nil {
		logger.Error("google connection failed, switching to offline store", zap.Error(err))
		return nil, false
	}
	logger.Info("connected to google sheets", zap.String("sheet", cfg.GoogleConfig.SheetName))
	return remote, true
}

// NewWithBackend wires an explicit backend; used by tests and by anything that
// wants to bypass the failover probe.
func NewWithBackend(backend domain.Backend, mailer domain.Mailer, logger *zap.Logger) *Manager {
	return &Manager{logger: logger, backend: backend, mailer: mailer}
}

// Remote reports whether the manager settled on the Google-backed store.
func (m *Manager) Remote() bool { return m.remote }

// RegisterUser appends the user unless the email is already taken. Uniqueness
// is read-then-check: the store itself has no constraint to lean on.
func (m *Manager) RegisterUser(u model.User) error {
	recs, err := m.backend.ListTable(schema.Users)
	if err != nil {
		return fmt.Errorf("reading users: %w", err)
	}
	for _, rec := range recs {
		if rec["email"] == u.Email {
			return ErrDuplicateEmail
		}
	}
	if err := m.backend.AppendRow(schema.Users, u.Record()); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	m.logger.Info("user registered", zap.String("email", u.Email))
	return nil
}

// Authenticate matches email and password exactly; the password compare is
// case-sensitive and string-normalized, digits-only passwords included.
func (m *Manager) Authenticate(email, senha string) (model.User, error) {
	recs, err := m.backend.ListTable(schema.Users)
	if err != nil {
		return model.User{}, fmt.Errorf("reading users: %w", err)
	}
	for _, rec := range recs {
		if rec["email"] == email && rec["senha"] == senha {
			return model.UserFromRecord(rec), nil
		}
	}
	return model.User{}, ErrInvalidCredentials
}

// ListUsers returns the whole client base in registration order.
func (m *Manager) ListUsers() ([]model.User, error) {
	recs, err := m.backend.ListTable(schema.Users)
	if err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}
	users := make([]model.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, model.UserFromRecord(rec))
	}
	return users, nil
}

// ListBudgets returns every budget, or only the owner's when ownerEmail is
// set, in store order.
func (m *Manager) ListBudgets(ownerEmail string) ([]model.Budget, error) {
	recs, err := m.backend.ListTable(schema.Budgets)
	if err != nil {
		return nil, fmt.Errorf("reading budgets: %w", err)
	}
	budgets := make([]model.Budget, 0, len(recs))
	for _, rec := range recs {
		if ownerEmail != "" && rec["user_email"] != ownerEmail {
			continue
		}
		budgets = append(budgets, model.BudgetFromRecord(rec))
	}
	return budgets, nil
}

// SubmitBudget uploads the attachments (at most MaxAttachments, each attempted
// independently), assigns the id and creation timestamp and appends the row.
// Returns the stored budget.
func (m *Manager) SubmitBudget(b model.Budget, files []Attachment) (model.Budget, error) {
	if len(files) > MaxAttachments {
		m.logger.Warn("attachments over the limit dropped",
			zap.Int("sent", len(files)), zap.Int("kept", MaxAttachments))
		files = files[:MaxAttachments]
	}

	links := make([]string, 0, len(files))
	for _, f := range files {
		link, err := m.backend.UploadBlob(b.UserNome, f.Filename, f.Data, f.MimeType)
		if err != nil {
			// one bad photo must not sink the submission
			m.logger.Error("attachment upload failed, skipping",
				zap.String("filename", f.Filename), zap.Error(err))
			continue
		}
		links = append(links, link)
	}

	b.ID = uuid.NewString()
	b.DataCriacao = time.Now().Format(createdAtLayout)
	b.Imagens = links
	if b.Status == "" {
		b.Status = model.StatusPendente
	}

	if err := m.backend.AppendRow(schema.Budgets, b.Record()); err != nil {
		return model.Budget{}, fmt.Errorf("saving budget: %w", err)
	}
	m.logger.Info("budget submitted",
		zap.String("id", b.ID), zap.String("user", b.UserEmail), zap.Int("photos", len(links)))
	return b, nil
}

// editableFields is the only set of columns a partial update may touch; the
// designer changes status, the client reworks the request text.
var editableFields = map[string]bool{
	"localizacao": true,
	"medidas":     true,
	"descricao":   true,
	"status":      true,
}

// EditBudget applies a partial update to one budget. Fields outside the
// allow-list are rejected, an unknown id surfaces as domain.ErrNotFound.
func (m *Manager) EditBudget(id string, updates schema.Record) error {
	if len(updates) == 0 {
		return nil
	}
	for field := range updates {
		if !editableFields[field] {
			return fmt.Errorf("campo %q não pode ser alterado", field)
		}
	}
	if err := m.backend.UpdateFields(schema.Budgets, id, updates); err != nil {
		return err
	}
	m.logger.Info("budget updated", zap.String("id", id), zap.Strings("fields", fieldNames(updates)))
	return nil
}

// RecoverPassword mails the stored password to the account's address. A
// structured failure, not a crash, while the SMTP sender is unconfigured.
func (m *Manager) RecoverPassword(email string) error {
	if !m.mailer.Configured() {
		return domain.ErrMailNotConfigured
	}
	recs, err := m.backend.ListTable(schema.Users)
	if err != nil {
		return fmt.Errorf("reading users: %w", err)
	}
	for _, rec := range recs {
		if rec["email"] == email {
			return m.mailer.SendRecovery(email, rec["nome"], rec["senha"])
		}
	}
	return fmt.Errorf("email %q: %w", email, domain.ErrNotFound)
}

func fieldNames(rec schema.Record) []string {
	names := make([]string, 0, len(rec))
	for f := range rec {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}
