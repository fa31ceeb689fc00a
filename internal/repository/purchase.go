package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swjin-lab/purchases-tracker/internal/common"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

// PurchaseRepository persists purchase records and their items.
type PurchaseRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.PurchaseRecord, error)
	Get(ctx context.Context, userID uuid.UUID, recordID string) (*entity.PurchaseRecord, error)
	Create(ctx context.Context, rec *entity.PurchaseRecord) error
	Replace(ctx context.Context, rec *entity.PurchaseRecord) error
	Delete(ctx context.Context, userID uuid.UUID, recordID string) error
	SetMissingQuantity(ctx context.Context, userID uuid.UUID, recordID, itemID string, qty int) error
}

type purchaseRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPurchaseRepository(db *sqlx.DB, logger *slog.Logger) PurchaseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &purchaseRepository{db: db, logger: logger}
}

type recordRow struct {
	UserID       string `db:"user_id"`
	ID           string `db:"id"`
	Date         string `db:"date"`
	CreatedAt    string `db:"created_at"`
	Vendor       string `db:"vendor"`
	ReceiptImage string `db:"receipt_image"`
}

type itemRow struct {
	RecordID        string  `db:"record_id"`
	ItemID          string  `db:"item_id"`
	Seq             int     `db:"seq"`
	Name            string  `db:"name"`
	Category        string  `db:"category"`
	Color           string  `db:"color"`
	Size            string  `db:"size"`
	Options         string  `db:"options"`
	UnitPrice       float64 `db:"unit_price"`
	Quantity        int     `db:"quantity"`
	TotalAmount     float64 `db:"total_amount"`
	MissingQuantity int     `db:"missing_quantity"`
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.PurchaseRecord, error) {
	var recs []recordRow
	q := r.db.Rebind(`SELECT user_id, id, date, created_at, vendor, receipt_image
		FROM purchase_records WHERE user_id = ? ORDER BY date DESC, id DESC`)
	if err := r.db.SelectContext(ctx, &recs, q, userID.String()); err != nil {
		r.logger.Error("failed to list purchase records", "user_id", userID, "error", err)
		return nil, err
	}

	var items []itemRow
	q = r.db.Rebind(`SELECT record_id, item_id, seq, name, category, color, size, options,
		unit_price, quantity, total_amount, missing_quantity
		FROM purchase_items WHERE user_id = ? ORDER BY record_id, seq`)
	if err := r.db.SelectContext(ctx, &items, q, userID.String()); err != nil {
		r.logger.Error("failed to list purchase items", "user_id", userID, "error", err)
		return nil, err
	}

	byRecord := make(map[string][]entity.PurchaseItem)
	for _, it := range items {
		byRecord[it.RecordID] = append(byRecord[it.RecordID], toItem(it))
	}

	out := make([]entity.PurchaseRecord, 0, len(recs))
	for _, rec := range recs {
		e, err := toRecord(rec, byRecord[rec.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *purchaseRepository) Get(ctx context.Context, userID uuid.UUID, recordID string) (*entity.PurchaseRecord, error) {
	var rec recordRow
	q := r.db.Rebind(`SELECT user_id, id, date, created_at, vendor, receipt_image
		FROM purchase_records WHERE user_id = ? AND id = ?`)
	if err := r.db.GetContext(ctx, &rec, q, userID.String(), recordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	var items []itemRow
	q = r.db.Rebind(`SELECT record_id, item_id, seq, name, category, color, size, options,
		unit_price, quantity, total_amount, missing_quantity
		FROM purchase_items WHERE user_id = ? AND record_id = ? ORDER BY seq`)
	if err := r.db.SelectContext(ctx, &items, q, userID.String(), recordID); err != nil {
		return nil, err
	}

	list := make([]entity.PurchaseItem, 0, len(items))
	for _, it := range items {
		list = append(list, toItem(it))
	}
	e, err := toRecord(rec, list)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *purchaseRepository) Create(ctx context.Context, rec *entity.PurchaseRecord) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO purchase_records (user_id, id, date, created_at, vendor, receipt_image)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q,
			rec.UserID.String(), rec.ID,
			rec.Date.Format(time.RFC3339), rec.CreatedAt.Format(time.RFC3339),
			rec.Vendor, rec.ReceiptImage,
		); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		return insertItems(ctx, tx, rec)
	})
}

// Replace swaps the whole record: record row updated, items deleted and
// re-inserted in one transaction. Missing record maps to ErrNotFound.
func (r *purchaseRepository) Replace(ctx context.Context, rec *entity.PurchaseRecord) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`UPDATE purchase_records SET date = ?, vendor = ?, receipt_image = ?
			WHERE user_id = ? AND id = ?`)
		res, err := tx.ExecContext(ctx, q,
			rec.Date.Format(time.RFC3339), rec.Vendor, rec.ReceiptImage,
			rec.UserID.String(), rec.ID,
		)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return common.ErrNotFound
		}

		q = tx.Rebind(`DELETE FROM purchase_items WHERE user_id = ? AND record_id = ?`)
		if _, err := tx.ExecContext(ctx, q, rec.UserID.String(), rec.ID); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		return insertItems(ctx, tx, rec)
	})
}

func (r *purchaseRepository) Delete(ctx context.Context, userID uuid.UUID, recordID string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`DELETE FROM purchase_items WHERE user_id = ? AND record_id = ?`)
		if _, err := tx.ExecContext(ctx, q, userID.String(), recordID); err != nil {
			return err
		}
		q = tx.Rebind(`DELETE FROM purchase_records WHERE user_id = ? AND id = ?`)
		res, err := tx.ExecContext(ctx, q, userID.String(), recordID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}

func (r *purchaseRepository) SetMissingQuantity(ctx context.Context, userID uuid.UUID, recordID, itemID string, qty int) error {
	q := r.db.Rebind(`UPDATE purchase_items SET missing_quantity = ?
		WHERE user_id = ? AND record_id = ? AND item_id = ?`)
	res, err := r.db.ExecContext(ctx, q, qty, userID.String(), recordID, itemID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *purchaseRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sqlx.Tx, rec *entity.PurchaseRecord) error {
	q := tx.Rebind(`INSERT INTO purchase_items
		(user_id, record_id, item_id, seq, name, category, color, size, options,
		 unit_price, quantity, total_amount, missing_quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for seq, it := range rec.Items {
		if _, err := tx.ExecContext(ctx, q,
			rec.UserID.String(), rec.ID, it.ItemID, seq,
			it.Name, it.Category, it.Color, it.Size, it.Options,
			it.UnitPrice, it.Quantity, it.TotalAmount, it.MissingQuantity,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", it.ItemID, err)
		}
	}
	return nil
}

func toItem(row itemRow) entity.PurchaseItem {
	return entity.PurchaseItem{
		ItemID:          row.ItemID,
		Name:            row.Name,
		Category:        row.Category,
		Color:           row.Color,
		Size:            row.Size,
		Options:         row.Options,
		UnitPrice:       row.UnitPrice,
		Quantity:        row.Quantity,
		TotalAmount:     row.TotalAmount,
		MissingQuantity: row.MissingQuantity,
	}
}

func toRecord(row recordRow, items []entity.PurchaseItem) (entity.PurchaseRecord, error) {
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return entity.PurchaseRecord{}, fmt.Errorf("record %s: bad user id: %w", row.ID, err)
	}
	date, err := time.Parse(time.RFC3339, row.Date)
	if err != nil {
		return entity.PurchaseRecord{}, fmt.Errorf("record %s: bad date: %w", row.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return entity.PurchaseRecord{}, fmt.Errorf("record %s: bad created_at: %w", row.ID, err)
	}
	return entity.PurchaseRecord{
		ID:           row.ID,
		UserID:       userID,
		Date:         date,
		CreatedAt:    createdAt,
		Vendor:       row.Vendor,
		ReceiptImage: row.ReceiptImage,
		Items:        items,
	}, nil
}
