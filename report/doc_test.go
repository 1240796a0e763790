package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSectionSkipsEmptyRows(t *testing.T) {
	doc := NewDoc("Teste")
	before := doc.Section("Vazia", []Row{
		{Label: "A", Value: ""},
		{Label: "B", Value: ""},
	})

	after := doc.Section("Preenchida", []Row{
		{Label: "A", Value: ""},
		{Label: "B", Value: "valor"},
	})

	require.Greater(t, after, before, "filled section should advance the cursor")
	require.Equal(t, 1, doc.PageCount())
}

func TestSectionOmittedWhenAllRowsEmpty(t *testing.T) {
	doc := NewDoc("Teste")
	first := doc.Section("Vazia", []Row{{Label: "A", Value: ""}})
	second := doc.Section("Também vazia", nil)
	require.Equal(t, first, second, "empty sections should not advance the cursor")
}

func TestTableSkippedWithoutRows(t *testing.T) {
	doc := NewDoc("Teste")
	before := doc.Section("Dados", []Row{{Label: "A", Value: "1"}})
	doc.Table("Parcelas", []string{"Parcela", "Valor"}, nil)

	after := doc.Section("Mais dados", []Row{{Label: "B", Value: "2"}})
	require.Greater(t, after, before)
	require.Equal(t, 1, doc.PageCount())
}

func TestSectionBreaksPage(t *testing.T) {
	doc := NewDoc("Teste")
	rows := []Row{{Label: "Linha", Value: "valor"}}
	for i := 0; i < 40; i++ {
		doc.Section("Seção", rows)
	}
	require.Greater(t, doc.PageCount(), 1)
}

func TestOutputProducesPDF(t *testing.T) {
	doc := NewDoc("Teste")
	doc.Section("Dados", []Row{{Label: "A", Value: "1"}})
	doc.SignatureLines("Emitente", "Recebedor")

	data, err := doc.Output()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
