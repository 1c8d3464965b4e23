package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Transaction is one processed receipt persisted for later review.
type Transaction struct {
	ID         uuid.UUID  `json:"id"`
	Merchant   string     `json:"merchant"`
	Date       *string    `json:"date"`
	Total      float64    `json:"total"`
	Confidence float64    `json:"confidence"`
	Source     string     `json:"source"`
	ImageURL   string     `json:"image_url"`
	OCRRaw     string     `json:"ocr_raw"`
	OCRJSON    string     `json:"ocr_json"`
	UserID     uuid.UUID  `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func SaveTransaction(ctx context.Context, tx *Transaction) error {
	query := `
		INSERT INTO transactions (
			merchant, date, total, confidence, source,
			image_url, ocr_raw, ocr_json, user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := Pool.QueryRow(ctx, query,
		tx.Merchant, tx.Date, tx.Total, tx.Confidence, tx.Source,
		tx.ImageURL, tx.OCRRaw, tx.OCRJSON, tx.UserID,
	).Scan(&tx.ID, &tx.CreatedAt)

	return err
}

func GetTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	query := `
		SELECT id, COALESCE(merchant, ''), date::text, COALESCE(total, 0),
		       COALESCE(confidence, 0), COALESCE(source, ''), COALESCE(image_url, ''),
		       created_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var tx Transaction
		err := rows.Scan(
			&tx.ID, &tx.Merchant, &tx.Date, &tx.Total,
			&tx.Confidence, &tx.Source, &tx.ImageURL, &tx.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}
