package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contaflow/contaflow/internal/money"
)

// SiblingRow is one installment of the group a full report covers.
type SiblingRow struct {
	Current     int
	Total       int
	Value       money.Amount
	DueDate     string
	StatusLabel string
}

// ReportInput bundles everything a full report needs: the account,
// its installment siblings when applicable, and every attachment
// from the four fixed slots plus the custom list.
type ReportInput struct {
	Account  AccountData
	Siblings []SiblingRow

	BillDocumentURL  string
	PaymentProofURL  string
	GeneratedBillURL string
	Custom           []AttachmentRef
}

// FullReport assembles the complete account report: account and
// payment details, the sibling installment table for installment
// groups, and every attachment.
func FullReport(ctx context.Context, fetcher *Fetcher, logger *slog.Logger, input ReportInput) (Artifact, error) {
	doc := NewDoc("Relatório - " + input.Account.Name)

	doc.Section("Dados da conta", accountRows(input.Account, true))
	doc.Section("Dados do pagamento", paymentRows(input.Account))

	if len(input.Siblings) > 0 {
		rows := make([][]string, 0, len(input.Siblings))
		for _, s := range input.Siblings {
			rows = append(rows, []string{
				fmt.Sprintf("%d/%d", s.Current, s.Total),
				money.FormatBRL(s.Value),
				s.DueDate,
				s.StatusLabel,
			})
		}
		doc.Table("Parcelas", []string{"Parcela", "Valor", "Vencimento", "Situação"}, rows)
	}

	var attachments []AttachmentRef
	if input.BillDocumentURL != "" {
		attachments = append(attachments, AttachmentRef{Name: "Documento da conta", URL: input.BillDocumentURL})
	}
	if input.PaymentProofURL != "" {
		attachments = append(attachments, AttachmentRef{Name: "Comprovante de pagamento", URL: input.PaymentProofURL})
	}
	if input.GeneratedBillURL != "" {
		attachments = append(attachments, AttachmentRef{Name: "Boleto gerado", URL: input.GeneratedBillURL})
	}
	attachments = append(attachments, input.Custom...)
	doc.EmbedAttachments(ctx, fetcher, logger, attachments)

	data, err := doc.Output()
	if err != nil {
		return Artifact{}, fmt.Errorf("report: render full report: %w", err)
	}
	return Artifact{Filename: "relatorio.pdf", Bytes: data}, nil
}
