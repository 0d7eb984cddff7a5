package finlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"finlog/pkg/analytics"
)

// AddGoal validates and stores a goal, returning its ID.
func (c *Core) AddGoal(ctx context.Context, ownerID string, req AddGoalRequest) (string, error) {
	if err := requireOwner(ownerID); err != nil {
		return "", err
	}
	timeframe := analytics.Timeframe(strings.ToLower(strings.TrimSpace(req.Timeframe)))
	if !timeframe.Valid() {
		return "", validationError("invalid timeframe: %s", req.Timeframe)
	}
	targetType := analytics.TargetType(strings.ToLower(strings.TrimSpace(req.TargetType)))
	if !targetType.Valid() {
		return "", validationError("invalid target_type: %s", req.TargetType)
	}
	if !(req.TargetValueUSD > 0) {
		return "", validationError("target_value_usd must be greater than 0")
	}
	start, err := c.normalizeDate("start_date", req.StartDate)
	if err != nil {
		return "", err
	}
	end, err := c.normalizeDate("end_date", req.EndDate)
	if err != nil {
		return "", err
	}
	if start > end {
		return "", validationError("start_date must not be after end_date")
	}

	id := uuid.NewString()
	err = c.WithTx(ctx, func(tx *sql.Tx) error {
		categoryID, err := ensureLabelTx(tx, ownerID, LabelCategory, req.Category)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO goals (id, owner_id, timeframe, target_type, target_value_usd, start_date, end_date, category_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, ownerID, string(timeframe), string(targetType), NewAmount(req.TargetValueUSD), start, end, categoryID); err != nil {
			return err
		}
		target := NewAmount(req.TargetValueUSD)
		return addActivityTx(tx, ownerID, ActivityLog{
			Action:     "create",
			EntityType: "goal",
			EntityID:   &id,
			Details:    stringPtr(fmt.Sprintf("%s %s %s..%s", timeframe, targetType, start, end)),
			NewValue:   &target,
		})
	})
	if err != nil {
		return "", dbError("failed to add goal", err)
	}
	return id, nil
}

// GetGoals returns the owner's goals ordered by start date.
func (c *Core) GetGoals(ctx context.Context, ownerID string) ([]Goal, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT g.id, g.timeframe, g.target_type, g.target_value_usd, g.start_date, g.end_date,
			g.category_id, c.name, g.created_at
		FROM goals g
		LEFT JOIN categories c ON c.id = g.category_id
		WHERE g.owner_id = ?
		ORDER BY g.start_date, g.id
	`, ownerID)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch goals", err)
	}
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		var g Goal
		var categoryID, category, createdAt sql.NullString
		if err := rows.Scan(&g.ID, &g.Timeframe, &g.TargetType, &g.TargetValueUSD, &g.StartDate, &g.EndDate,
			&categoryID, &category, &createdAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "failed to scan goal", err)
		}
		g.CategoryID = nullableString(categoryID)
		g.Category = nullableString(category)
		g.CreatedAt = nullableString(createdAt)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch goals", err)
	}
	return goals, nil
}

// DeleteGoal removes a goal.
func (c *Core) DeleteGoal(ctx context.Context, ownerID, id string) (bool, error) {
	if err := requireOwner(ownerID); err != nil {
		return false, err
	}
	deleted := false
	err := c.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM goals WHERE owner_id = ? AND id = ?", ownerID, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		deleted = true
		return addActivityTx(tx, ownerID, ActivityLog{Action: "delete", EntityType: "goal", EntityID: &id})
	})
	if err != nil {
		return false, dbError("failed to delete goal", err)
	}
	return deleted, nil
}

func (c *Core) analyticsGoals(goals []Goal) []analytics.Goal {
	out := make([]analytics.Goal, 0, len(goals))
	for _, g := range goals {
		start, err := c.parseDate(g.StartDate)
		if err != nil {
			c.logger.Warn("skipping goal with bad start_date", "goal", g.ID, "start_date", g.StartDate)
			continue
		}
		end, err := c.parseDate(g.EndDate)
		if err != nil {
			c.logger.Warn("skipping goal with bad end_date", "goal", g.ID, "end_date", g.EndDate)
			continue
		}
		out = append(out, analytics.Goal{
			ID:             g.ID,
			Timeframe:      analytics.Timeframe(g.Timeframe),
			TargetType:     analytics.TargetType(g.TargetType),
			TargetValueUSD: g.TargetValueUSD.Float(),
			StartDate:      start,
			EndDate:        end,
			Category:       g.Category,
		})
	}
	return out
}
