package service

import (
	"context"
	"strconv"

	"mealprep/backend/common"
	"mealprep/backend/model"

	"go.uber.org/zap"
)

// RecordPlanLog stores planner activity in the plan_logs table. It is the
// planner's OnActivity hook in the server.
func RecordPlanLog(ctx context.Context, userID, action, slotID, message string) {
	owner, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return
	}
	if err := model.SavePlanLog(ctx, owner, model.PlanLogAction(action), slotID, message); err != nil {
		common.SysError("failed to save plan log", zap.String("user_id", userID), zap.String("action", action), zap.Error(err))
	}
}
