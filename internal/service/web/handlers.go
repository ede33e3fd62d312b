package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"orcamentos/internal/domain"
	"orcamentos/internal/model"
	"orcamentos/internal/schema"
	"orcamentos/internal/service/data"
)

// uploads are photos of a terrain, a handful of phone pictures at most
const maxUploadBytes = 32 << 20

type registerRequest struct {
	Nome      string `json:"nome"`
	Sobrenome string `json:"sobrenome"`
	Telefone  string `json:"telefone"`
	Email     string `json:"email"`
	Senha     string `json:"senha"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "Corpo da requisição inválido.")
		return
	}
	if req.Nome == "" || req.Sobrenome == "" || req.Telefone == "" || req.Email == "" {
		s.badRequest(w, "Preencha todos os campos.")
		return
	}
	if len(req.Senha) < 4 {
		s.badRequest(w, "Senha muito curta (mínimo 4 caracteres).")
		return
	}

	err := s.manager.RegisterUser(model.User{
		Nome:      req.Nome,
		Sobrenome: req.Sobrenome,
		Telefone:  req.Telefone,
		Email:     req.Email,
		Senha:     req.Senha,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "Cadastro realizado com sucesso!", nil)
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type loginResponse struct {
	Token string `json:"token"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "Corpo da requisição inválido.")
		return
	}

	user, err := s.manager.Authenticate(req.Email, req.Senha)
	if err != nil {
		s.fail(w, err)
		return
	}
	token, err := s.sessions.Start(user)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "", loginResponse{Token: token, Nome: user.Nome, Email: user.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.sessions.End(token)
	}
	s.ok(w, "", nil)
}

type recoverRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		s.badRequest(w, "Informe o email cadastrado.")
		return
	}
	if err := s.manager.RecoverPassword(req.Email); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "Email de recuperação enviado.", nil)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request, user model.User) {
	budgets, err := s.manager.ListBudgets(user.Email)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "", budgets)
}

// handleSubmitBudget accepts the budget form as multipart: text fields plus
// up to four photos under "fotos".
func (s *Server) handleSubmitBudget(w http.ResponseWriter, r *http.Request, user model.User) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.badRequest(w, "Envie o formulário como multipart/form-data.")
		return
	}

	localizacao := r.FormValue("localizacao")
	medidas := r.FormValue("medidas")
	descricao := r.FormValue("descricao")
	if localizacao == "" || medidas == "" || descricao == "" {
		s.badRequest(w, "Preencha localização, medidas e descrição.")
		return
	}

	var files []data.Attachment
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["fotos"] {
			f, err := fh.Open()
			if err != nil {
				s.badRequest(w, "Não foi possível ler o arquivo "+fh.Filename+".")
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				s.badRequest(w, "Não foi possível ler o arquivo "+fh.Filename+".")
				return
			}
			files = append(files, data.Attachment{
				Filename: fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Data:     content,
			})
		}
	}

	stored, err := s.manager.SubmitBudget(model.Budget{
		UserEmail:   user.Email,
		UserNome:    user.Nome,
		Localizacao: localizacao,
		Medidas:     medidas,
		Descricao:   descricao,
		Status:      model.StatusPendente,
	}, files)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "Orçamento enviado com sucesso!", stored)
}

type editBudgetRequest struct {
	Localizacao *string `json:"localizacao"`
	Medidas     *string `json:"medidas"`
	Descricao   *string `json:"descricao"`
}

// handleEditBudget lets the owner rework the request text. Status changes
// belong to the designer panel.
func (s *Server) handleEditBudget(w http.ResponseWriter, r *http.Request, user model.User) {
	id := r.PathValue("id")

	var req editBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "Corpo da requisição inválido.")
		return
	}

	updates := schema.Record{}
	if req.Localizacao != nil {
		updates["localizacao"] = *req.Localizacao
	}
	if req.Medidas != nil {
		updates["medidas"] = *req.Medidas
	}
	if req.Descricao != nil {
		updates["descricao"] = *req.Descricao
	}
	if len(updates) == 0 {
		s.badRequest(w, "Nenhum campo para atualizar.")
		return
	}

	if err := s.ownsBudget(user, id); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.manager.EditBudget(id, updates); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "Alterações salvas.", nil)
}

// ownsBudget confirms the id belongs to the user before any edit.
func (s *Server) ownsBudget(user model.User, id string) error {
	budgets, err := s.manager.ListBudgets(user.Email)
	if err != nil {
		return err
	}
	for _, b := range budgets {
		if b.ID == id {
			return nil
		}
	}
	return fmt.Errorf("orçamento %s do usuário %s: %w", id, user.Email, domain.ErrNotFound)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	users, err := s.manager.ListUsers()
	if err != nil {
		s.fail(w, err)
		return
	}
	// the panel lists contact data, never passwords
	type client struct {
		Nome      string `json:"nome"`
		Sobrenome string `json:"sobrenome"`
		Telefone  string `json:"telefone"`
		Email     string `json:"email"`
	}
	clients := make([]client, 0, len(users))
	for _, u := range users {
		clients = append(clients, client{Nome: u.Nome, Sobrenome: u.Sobrenome, Telefone: u.Telefone, Email: u.Email})
	}
	s.ok(w, "", clients)
}

func (s *Server) handleDesignerBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.manager.ListBudgets(r.URL.Query().Get("user_email"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "", budgets)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

var validStatuses = map[string]bool{
	model.StatusPendente:         true,
	model.StatusEmAnalise:        true,
	model.StatusOrcamentoEnviado: true,
	model.StatusFechado:          true,
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "Corpo da requisição inválido.")
		return
	}
	if !validStatuses[req.Status] {
		s.badRequest(w, "Status inválido.")
		return
	}

	if err := s.manager.EditBudget(id, schema.Record{"status": req.Status}); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, "Status atualizado!", nil)
}
