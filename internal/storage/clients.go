package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dhima/client-service/internal/models"
)

const clientColumns = `id, first_name, middle_name, last_name, phone, position, email, fk_client_role`

const insertClientPrefix = `INSERT INTO client (first_name, middle_name, last_name, phone, position, email, password, fk_client_role) VALUES `

// ListClients returns one page of clients ordered by id along with the total
// number of clients.
func (c *MySQLClient) ListClients(ctx context.Context, page, limit int) ([]models.Client, int64, error) {
	var total int64
	if err := c.Get(ctx, &total, `SELECT COUNT(*) FROM client`); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	offset := (page - 1) * limit
	clients := make([]models.Client, 0, limit)
	if err := c.Select(ctx, &clients,
		`SELECT `+clientColumns+` FROM client ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	); err != nil {
		return nil, 0, fmt.Errorf("query clients: %w", err)
	}

	return clients, total, nil
}

// GetClient fetches a client joined with its role.
func (c *MySQLClient) GetClient(ctx context.Context, id int64) (*models.ClientDetail, error) {
	var client models.ClientDetail
	err := c.Get(ctx, &client,
		`SELECT e.id, e.first_name, e.middle_name, e.last_name, e.phone, e.position, e.email, er.role, er.description
		 FROM client e LEFT JOIN client_role er ON e.fk_client_role = er.id
		 WHERE e.id = ?`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &client, nil
}

// CreateClient inserts a client and returns its id.
func (c *MySQLClient) CreateClient(ctx context.Context, client *models.Client) (int64, error) {
	res, err := c.Exec(ctx, insertClientPrefix+`(?,?,?,?,?,?,?,?)`, clientRow(client)...)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", err)
	}
	return res.LastInsertID, nil
}

// CreateClients inserts all clients with one multi-row statement inside a
// transaction.
func (c *MySQLClient) CreateClients(ctx context.Context, clients []models.Client) (ExecResult, error) {
	rows := make([][]any, 0, len(clients))
	for i := range clients {
		rows = append(rows, clientRow(&clients[i]))
	}

	var res ExecResult
	err := c.WithinTransaction(ctx, c.txTimeout, func(tx *Tx) error {
		var err error
		res, err = tx.Bulk(ctx, insertClientPrefix+`?`, rows)
		return err
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("bulk insert clients: %w", err)
	}
	return res, nil
}

// UpdateClient locks the client row and updates its mutable fields.
func (c *MySQLClient) UpdateClient(ctx context.Context, client *models.Client) (int64, error) {
	var affected int64
	err := c.WithinTransaction(ctx, c.txTimeout, func(tx *Tx) error {
		var id int64
		if err := tx.Get(ctx, &id, `SELECT id FROM client WHERE id = ? FOR UPDATE`, client.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrClientNotFound
			}
			return fmt.Errorf("lock client: %w", err)
		}

		res, err := tx.Exec(ctx,
			`UPDATE client SET first_name = ?, middle_name = ?, last_name = ?, phone = ?, position = ?, email = ?, fk_client_role = ?
			 WHERE id = ?`,
			client.FirstName,
			client.MiddleName,
			client.LastName,
			client.Phone,
			client.Position,
			client.Email,
			client.RoleID,
			client.ID,
		)
		if err != nil {
			return fmt.Errorf("update client: %w", err)
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// DeleteClients removes every client whose id is listed.
func (c *MySQLClient) DeleteClients(ctx context.Context, ids []int64) (int64, error) {
	res, err := c.Exec(ctx, `DELETE FROM client WHERE (id) IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete clients: %w", err)
	}
	return res.RowsAffected, nil
}

func clientRow(client *models.Client) []any {
	return []any{
		client.FirstName,
		client.MiddleName,
		client.LastName,
		client.Phone,
		client.Position,
		client.Email,
		client.PasswordHash,
		client.RoleID,
	}
}
