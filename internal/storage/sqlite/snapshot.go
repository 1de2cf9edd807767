package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/groupledger/internal/models"
)

// loadSnapshot reads a group and all of its rows. Each query is drained before
// the next one starts, since a transaction holds a single connection.
func loadSnapshot(ctx context.Context, q querier, groupID string) (*models.GroupSnapshot, error) {
	group, err := getGroup(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	snap := &models.GroupSnapshot{Group: *group}

	// Members
	rows, err := q.QueryContext(ctx,
		`SELECT user_id, amount_owed, is_paid, joined_at FROM members
		 WHERE group_id = ? ORDER BY joined_at, user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	for rows.Next() {
		m := models.Member{GroupID: groupID}
		if err := rows.Scan(&m.UserID, &m.AmountOwed, &m.IsPaid, &m.JoinedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		snap.Members = append(snap.Members, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	// Items
	rows, err = q.QueryContext(ctx,
		`SELECT id, name, amount, created_at FROM items
		 WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		item := models.Item{GroupID: groupID}
		if err := rows.Scan(&item.ID, &item.Name, &item.Amount, &item.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(snap.Items)
		snap.Items = append(snap.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	// Item assignments, attached to their items
	rows, err = q.QueryContext(ctx,
		`SELECT a.item_id, a.user_id, a.amount FROM item_assignments a
		 JOIN items i ON i.id = a.item_id
		 WHERE i.group_id = ? ORDER BY a.item_id, a.user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	for rows.Next() {
		var a models.ItemAssignment
		if err := rows.Scan(&a.ItemID, &a.UserID, &a.Amount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := index[a.ItemID]; ok {
			snap.Items[i].Assignments = append(snap.Items[i].Assignments, a)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	// Payments
	rows, err = q.QueryContext(ctx,
		`SELECT id, user_id, amount, note, created_at, created_by FROM payments
		 WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	for rows.Next() {
		p := models.Payment{GroupID: groupID}
		var note sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Amount, &note, &p.CreatedAt, &p.CreatedBy); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if note.Valid {
			p.Note = note.String
		}
		snap.Payments = append(snap.Payments, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return snap, nil
}

// saveSnapshot rewrites the group row and replaces every child row.
func saveSnapshot(ctx context.Context, q querier, snap *models.GroupSnapshot) error {
	g := snap.Group
	_, err := q.ExecContext(ctx,
		`UPDATE groups SET name = ?, tax_rate = ?, service_charge_rate = ?, total = ? WHERE id = ?`,
		g.Name, g.TaxRate, g.ServiceChargeRate, g.Total, g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	// Assignments cascade from items.
	for _, table := range []string{"members", "items", "payments"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE group_id = ?", g.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, m := range snap.Members {
		_, err = q.ExecContext(ctx,
			"INSERT INTO members (group_id, user_id, amount_owed, is_paid, joined_at) VALUES (?, ?, ?, ?, ?)",
			g.ID, m.UserID, m.AmountOwed, m.IsPaid, m.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	for _, item := range snap.Items {
		_, err = q.ExecContext(ctx,
			"INSERT INTO items (id, group_id, name, amount, created_at) VALUES (?, ?, ?, ?, ?)",
			item.ID, g.ID, item.Name, item.Amount, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		for _, a := range item.Assignments {
			_, err = q.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, user_id, amount) VALUES (?, ?, ?)",
				item.ID, a.UserID, a.Amount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	for _, p := range snap.Payments {
		var note any
		if p.Note != "" {
			note = p.Note
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO payments (id, group_id, user_id, amount, note, created_at, created_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, g.ID, p.UserID, p.Amount, note, p.CreatedAt, p.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}
	return nil
}
