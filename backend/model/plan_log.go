package model

import (
	"context"
	"fmt"

	"github.com/burugo/thing"
)

// PlanLogAction names what happened to a plan.
type PlanLogAction string

const (
	PlanLogAssign    PlanLogAction = "assign"
	PlanLogMove      PlanLogAction = "move"
	PlanLogRemove    PlanLogAction = "remove"
	PlanLogFavorite  PlanLogAction = "favorite_drop"
	PlanLogClear     PlanLogAction = "clear"
	PlanLogComponent PlanLogAction = "component"
	PlanLogTemplate  PlanLogAction = "template"
	PlanLogConflict  PlanLogAction = "conflict"
)

// PlanLog is an audit entry for a plan mutation.
type PlanLog struct {
	thing.BaseModel
	UserID  int64         `db:"user_id,index:idx_plan_log_owner" json:"user_id"`
	Action  PlanLogAction `db:"action,index:idx_plan_log_action" json:"action"`
	SlotID  string        `db:"slot_id" json:"slot_id"`
	Message string        `db:"message" json:"message"`
}

func (l *PlanLog) TableName() string {
	return "plan_logs"
}

var PlanLogDB *thing.Thing[*PlanLog]

func PlanLogInit() error {
	var err error
	PlanLogDB, err = thing.Use[*PlanLog]()
	if err != nil {
		return fmt.Errorf("failed to initialize PlanLogDB: %w", err)
	}
	return nil
}

// GetPlanLogs retrieves a user's plan logs, newest first.
func GetPlanLogs(ctx context.Context, userID int64, action string, page, pageSize int) ([]*PlanLog, int64, error) {
	query := PlanLogDB.Query(thing.QueryParams{})
	query = query.Where("user_id = ?", userID)
	if action != "" {
		query = query.Where("action = ?", action)
	}

	total, err := query.Count()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count plan logs: %w", err)
	}

	logs, err := query.Order("created_at DESC").Fetch((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch plan logs: %w", err)
	}
	return logs, total, nil
}

// SavePlanLog records a mutation; long messages are truncated.
func SavePlanLog(ctx context.Context, userID int64, action PlanLogAction, slotID, message string) error {
	const maxMessageLength = 1024
	if len(message) > maxMessageLength {
		message = message[:maxMessageLength] + "... [truncated]"
	}
	return PlanLogDB.Save(&PlanLog{
		UserID:  userID,
		Action:  action,
		SlotID:  slotID,
		Message: message,
	})
}
