package model

import (
	"strings"

	"orcamentos/internal/schema"
)

// Budget status values as stored on the sheet. Kept in Portuguese because the
// spreadsheet is read directly by the designer.
const (
	StatusPendente         = "Pendente"
	StatusEmAnalise        = "Em Análise"
	StatusOrcamentoEnviado = "Orçamento Enviado"
	StatusFechado          = "Fechado"
)

// ImageDelimiter joins the uploaded photo links into the single `imagens`
// cell. Part of the stored format, do not change.
const ImageDelimiter = " | "

// User is one row of the Usuarios table.
type User struct {
	Nome      string `json:"nome"`
	Sobrenome string `json:"sobrenome"`
	Telefone  string `json:"telefone"`
	Email     string `json:"email"`
	Senha     string `json:"senha"`
}

func (u User) Record() schema.Record {
	return schema.Record{
		"nome":      u.Nome,
		"sobrenome": u.Sobrenome,
		"telefone":  u.Telefone,
		"email":     u.Email,
		"senha":     u.Senha,
	}
}

func UserFromRecord(rec schema.Record) User {
	return User{
		Nome:      rec["nome"],
		Sobrenome: rec["sobrenome"],
		Telefone:  rec["telefone"],
		Email:     rec["email"],
		Senha:     rec["senha"],
	}
}

// Budget is one row of the Orcamentos table.
type Budget struct {
	ID          string   `json:"id"`
	UserEmail   string   `json:"user_email"`
	UserNome    string   `json:"user_nome"`
	Localizacao string   `json:"localizacao"`
	Medidas     string   `json:"medidas"`
	Descricao   string   `json:"descricao"`
	Status      string   `json:"status"`
	Imagens     []string `json:"imagens"`
	DataCriacao string   `json:"data_criacao"`
}

func (b Budget) Record() schema.Record {
	return schema.Record{
		"id":           b.ID,
		"user_email":   b.UserEmail,
		"user_nome":    b.UserNome,
		"localizacao":  b.Localizacao,
		"medidas":      b.Medidas,
		"descricao":    b.Descricao,
		"status":       b.Status,
		"imagens":      strings.Join(b.Imagens, ImageDelimiter),
		"data_criacao": b.DataCriacao,
	}
}

func BudgetFromRecord(rec schema.Record) Budget {
	return Budget{
		ID:          rec["id"],
		UserEmail:   rec["user_email"],
		UserNome:    rec["user_nome"],
		Localizacao: rec["localizacao"],
		Medidas:     rec["medidas"],
		Descricao:   rec["descricao"],
		Status:      rec["status"],
		Imagens:     SplitImages(rec["imagens"]),
		DataCriacao: rec["data_criacao"],
	}
}

// SplitImages is the inverse of the ImageDelimiter join; an empty cell means
// no photos, not one empty link.
func SplitImages(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ImageDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
