package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/trogers1052/portfolio-service/internal/models"
)

// CreatePosition inserts a new position. The symbol is upper-cased and both
// timestamps are set. Returns a *models.ValidationError when the input
// violates a data-model invariant.
func (db *DB) CreatePosition(p *models.Position) error {
	create := models.PositionCreate{
		Symbol:        p.Symbol,
		AssetClass:    p.AssetClass,
		Quantity:      p.Quantity,
		PurchasePrice: p.PurchasePrice,
	}
	if err := create.Validate(); err != nil {
		return err
	}

	if p.AssetClass == "" {
		p.AssetClass = models.AssetClassStock
	}
	p.Symbol = strings.ToUpper(p.Symbol)
	now := time.Now().UTC()

	query := `
		INSERT INTO positions (symbol, asset_class, quantity, purchase_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		p.Symbol, p.AssetClass, p.Quantity, p.PurchasePrice, now, now,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetPositionByID retrieves a position by ID. Returns (nil, nil) when the
// ID does not exist; absence is a normal outcome, not an error.
func (db *DB) GetPositionByID(id int) (*models.Position, error) {
	query := `
		SELECT id, symbol, asset_class, quantity, purchase_price, created_at, updated_at
		FROM positions
		WHERE id = $1
	`
	var p models.Position
	err := db.conn.QueryRow(query, id).Scan(
		&p.ID, &p.Symbol, &p.AssetClass, &p.Quantity, &p.PurchasePrice, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

// GetAllPositions retrieves all positions, most recent first.
func (db *DB) GetAllPositions() ([]*models.Position, error) {
	query := `
		SELECT id, symbol, asset_class, quantity, purchase_price, created_at, updated_at
		FROM positions
		ORDER BY created_at DESC, id DESC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		var p models.Position
		err := rows.Scan(
			&p.ID, &p.Symbol, &p.AssetClass, &p.Quantity, &p.PurchasePrice, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}

// UpdatePosition applies the supplied fields of a partial update and bumps
// updated_at. Fields absent from the update are left untouched. Returns
// (nil, nil) when the ID does not exist.
func (db *DB) UpdatePosition(id int, upd *models.PositionUpdate) (*models.Position, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	p, err := db.GetPositionByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if upd.Symbol != nil {
		p.Symbol = strings.ToUpper(*upd.Symbol)
	}
	if upd.AssetClass != nil {
		p.AssetClass = *upd.AssetClass
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	if upd.PurchasePrice != nil {
		p.PurchasePrice = *upd.PurchasePrice
	}
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE positions SET
			symbol = $2, asset_class = $3, quantity = $4, purchase_price = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := db.conn.Exec(query,
		p.ID, p.Symbol, p.AssetClass, p.Quantity, p.PurchasePrice, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// deleted between the read and the write
		return nil, nil
	}
	return p, nil
}

// DeletePosition removes a position by ID. Returns false when the ID does
// not exist; a missing position is a normal outcome, not an error.
func (db *DB) DeletePosition(id int) (bool, error) {
	result, err := db.conn.Exec(`DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
