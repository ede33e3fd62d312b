package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFixedOrder(t *testing.T) {
	rec := Record{
		"email":     "a@x.com",
		"nome":      "Ana",
		"senha":     "1234",
		"sobrenome": "Souza",
		"telefone":  "5511999990000",
	}

	row := Users.Row(rec)

	require.Len(t, row, 5)
	assert.Equal(t, []interface{}{"Ana", "Souza", "5511999990000", "a@x.com", "1234"}, row)
}

func TestRowMissingFieldsSerializeEmpty(t *testing.T) {
	row := Budgets.Row(Record{"id": "b1", "status": "Pendente"})

	require.Len(t, row, len(Budgets.Columns))
	assert.Equal(t, "b1", row[0])
	assert.Equal(t, "Pendente", row[Budgets.Col("status")])
	assert.Equal(t, "", row[Budgets.Col("descricao")])
	assert.Equal(t, "", row[Budgets.Col("imagens")])
}

func TestRowDropsUnknownFields(t *testing.T) {
	row := Users.Row(Record{"nome": "Ana", "cpf": "123"})
	for _, cell := range row {
		assert.NotEqual(t, "123", cell)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	in := Record{
		"id":           "b1",
		"user_email":   "a@x.com",
		"user_nome":    "Ana",
		"localizacao":  "https://www.google.com/maps?q=-23.5,-46.6 | (Rua X)",
		"medidas":      "10m x 20m",
		"descricao":    "casa com 2 quartos",
		"status":       "Pendente",
		"imagens":      "",
		"data_criacao": "2026-01-10 09:30:00.000000",
	}

	header := make([]string, len(Budgets.Columns))
	copy(header, Budgets.Columns)
	out := Budgets.Record(header, Budgets.Row(in))

	assert.Equal(t, in, out)
}

func TestRecordShortRow(t *testing.T) {
	header := []string{"nome", "sobrenome", "telefone", "email", "senha"}
	rec := Users.Record(header, []interface{}{"Ana", "Souza"})

	assert.Equal(t, "Ana", rec["nome"])
	assert.Equal(t, "Souza", rec["sobrenome"])
	assert.Equal(t, "", rec["email"])
	assert.Equal(t, "", rec["senha"])
}

func TestRecordNumericCell(t *testing.T) {
	header := []string{"nome", "sobrenome", "telefone", "email", "senha"}
	rec := Users.Record(header, []interface{}{"Ana", "Souza", 5511999990000.0, "a@x.com", 1234})

	// sheets can hand numbers back for digit-only cells
	assert.Equal(t, "1234", rec["senha"])
}

func TestCol(t *testing.T) {
	assert.Equal(t, 6, Budgets.Col("status"))
	assert.Equal(t, 3, Budgets.Col("localizacao"))
	assert.Equal(t, -1, Budgets.Col("nope"))
}
