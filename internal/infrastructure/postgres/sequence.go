package postgres

import (
	"context"
	"fmt"
)

// Tipos de consecutivo en document_sequences.
const (
	seqServiceOrder = "SO"
	seqOffer        = "OF"
	seqInvoice      = "FV"
)

// nextSequence incrementa y devuelve el consecutivo (company, kind).
// El UPSERT bloquea la fila hasta el fin de la transacción, así dos órdenes simultáneas no comparten número.
func nextSequence(ctx context.Context, q Querier, companyID, kind string) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, `
		INSERT INTO document_sequences (company_id, kind, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, kind)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`, companyID, kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", kind, err)
	}
	return n, nil
}
