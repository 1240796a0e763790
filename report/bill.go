package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/contaflow/contaflow/internal/money"
)

const dateLayout = "02/01/2006"

// AccountData is the account snapshot a document is built from.
type AccountData struct {
	Name               string
	KindLabel          string
	Value              money.Amount
	FeesAndFines       *money.Amount
	DueDate            time.Time
	StatusLabel        string
	InstallmentCurrent int
	InstallmentTotal   int

	PaymentDate          time.Time
	PaymentMethod        string
	PaymentBankReference string
}

// SubmitterData holds the profile fields printed on generated bills.
type SubmitterData struct {
	Name       string
	Document   string
	Address    string
	City       string
	PostalCode string
}

// BillOptions gates which optional blocks a custom bill includes.
// Account name, value and due date are always printed.
type BillOptions struct {
	ShowFees              bool
	ShowPayment           bool
	ShowSubmitter         bool
	ShowBillDocument      bool
	ShowPaymentProof      bool
	ShowCustomAttachments bool
}

// BillInput bundles everything a custom bill needs.
type BillInput struct {
	Account   AccountData
	Submitter SubmitterData

	BillDocumentURL string
	PaymentProofURL string
	Custom          []AttachmentRef
}

// CustomBill assembles the user-facing bill document: account
// details, payment details, submitter fields and attachments, each
// block gated by the caller's options, closed by two signature lines.
func CustomBill(ctx context.Context, fetcher *Fetcher, logger *slog.Logger, input BillInput, opts BillOptions) (Artifact, error) {
	doc := NewDoc("Boleto - " + input.Account.Name)

	doc.Section("Dados da conta", accountRows(input.Account, opts.ShowFees))

	if opts.ShowPayment {
		doc.Section("Dados do pagamento", paymentRows(input.Account))
	}

	if opts.ShowSubmitter {
		doc.Section("Emitente", []Row{
			{Label: "Nome", Value: input.Submitter.Name},
			{Label: "Documento", Value: input.Submitter.Document},
			{Label: "Endereço", Value: input.Submitter.Address},
			{Label: "Cidade", Value: input.Submitter.City},
			{Label: "CEP", Value: input.Submitter.PostalCode},
		})
	}

	var attachments []AttachmentRef
	if opts.ShowBillDocument && input.BillDocumentURL != "" {
		attachments = append(attachments, AttachmentRef{Name: "Documento da conta", URL: input.BillDocumentURL})
	}
	if opts.ShowPaymentProof && input.PaymentProofURL != "" {
		attachments = append(attachments, AttachmentRef{Name: "Comprovante de pagamento", URL: input.PaymentProofURL})
	}
	if opts.ShowCustomAttachments {
		attachments = append(attachments, input.Custom...)
	}
	doc.EmbedAttachments(ctx, fetcher, logger, attachments)

	doc.SignatureLines("Emitente", "Recebedor")

	data, err := doc.Output()
	if err != nil {
		return Artifact{}, fmt.Errorf("report: render bill: %w", err)
	}
	return Artifact{Filename: "boleto.pdf", Bytes: data}, nil
}

func accountRows(acc AccountData, showFees bool) []Row {
	rows := []Row{
		{Label: "Nome", Value: acc.Name},
		{Label: "Tipo", Value: acc.KindLabel},
		{Label: "Valor", Value: money.FormatBRL(acc.Value)},
		{Label: "Vencimento", Value: acc.DueDate.Format(dateLayout)},
		{Label: "Situação", Value: acc.StatusLabel},
	}
	if acc.InstallmentTotal > 0 {
		rows = append(rows, Row{
			Label: "Parcela",
			Value: fmt.Sprintf("%d/%d", acc.InstallmentCurrent, acc.InstallmentTotal),
		})
	}
	if showFees && acc.FeesAndFines != nil {
		rows = append(rows, Row{Label: "Juros e multas", Value: money.FormatBRL(*acc.FeesAndFines)})
	}
	return rows
}

func paymentRows(acc AccountData) []Row {
	var paidAt string
	if !acc.PaymentDate.IsZero() {
		paidAt = acc.PaymentDate.Format(dateLayout)
	}
	return []Row{
		{Label: "Data do pagamento", Value: paidAt},
		{Label: "Forma de pagamento", Value: acc.PaymentMethod},
		{Label: "Banco", Value: acc.PaymentBankReference},
	}
}
